package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const barWidth = 20

// ProgressBar is a determinate bar. Max defaults to 100 when unset.
type ProgressBar struct {
	Value float64
	Max   float64
}

// Percent is round(Value/Max*100), clamped to 0..100.
func (b ProgressBar) Percent() int {
	limit := b.Max
	if limit <= 0 {
		limit = 100
	}
	p := int(math.Round(b.Value / limit * 100))
	return min(max(p, 0), 100)
}

func (b ProgressBar) String() string {
	pct := b.Percent()
	filled := pct * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// isTerminal is a test seam for terminal detection.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressLine redraws a single status line in place on a terminal and
// falls back to one line per change otherwise.
type progressLine struct {
	w    io.Writer
	tty  bool
	last string
}

func newProgressLine(w io.Writer, tty bool) *progressLine {
	return &progressLine{w: w, tty: tty}
}

func (p *progressLine) draw(line string) {
	if line == p.last {
		return
	}
	p.last = line
	if p.tty {
		// \r returns to column 0, \033[K clears what was there
		fmt.Fprintf(p.w, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(p.w, line)
}

func (p *progressLine) done() {
	if p.tty && p.last != "" {
		fmt.Fprintln(p.w)
	}
	p.last = ""
}
