package client

import (
	"io"
	"math"
	"sync"
)

// progressTracker turns byte counts into percentages. Reports are made
// under the lock, so they are ordered and none slip out after finish.
type progressTracker struct {
	mu    sync.Mutex
	fn    ProgressFunc
	total int64
	sent  int64
	last  int
	done  bool
}

func newProgressTracker(total int64, fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn, total: total}
}

func (p *progressTracker) add(n int) {
	if p.fn == nil || n <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	p.sent += int64(n)
	if pct := percent(p.sent, p.total); pct > p.last {
		p.last = pct
		p.fn(pct)
	}
}

// finish stops further reports; on success a last 100 is emitted if the
// transport never got there.
func (p *progressTracker) finish(success bool) {
	if p.fn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	if success && p.last < 100 {
		p.last = 100
		p.fn(100)
	}
	p.done = true
}

func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(sent) / float64(total) * 100))
	return min(max(pct, 0), 100)
}

type progressReader struct {
	r       io.Reader
	tracker *progressTracker
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	pr.tracker.add(n)
	return n, err
}
