// Package session owns one user's upload attempt: the selected file, its
// preview, and the Idle/Uploading/Processing/Completed/Error state machine.
//
// All mutation happens inside Orchestrator. Asynchronous work (thumbnail
// extraction, upload, the processing settle delay) is tagged with the
// generation it started in; results arriving after a reselection, reset or
// new upload are dropped.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vehicletrack/internal/client/client"
	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
	"github.com/dmitrijs2005/vehicletrack/internal/thumbnail"
)

// DefaultSettleDelay stands in for a backend completion signal.
const DefaultSettleDelay = time.Second

const unknownErrorText = "An unknown error occurred"

type Uploader interface {
	Upload(ctx context.Context, file *media.File, onProgress client.ProgressFunc) (*client.UploadResponse, error)
	DownloadURL(path string) string
}

type Extractor interface {
	Extract(ctx context.Context, file *media.File) thumbnail.Result
}

// Snapshot is a copy of everything a view needs to render.
type Snapshot struct {
	SessionID string
	State     State
	File      *media.File
	Thumbnail thumbnail.Result
}

func (s Snapshot) Status() string {
	return StatusText(s.State, s.File != nil)
}

type Orchestrator struct {
	uploader    Uploader
	extractor   Extractor
	logger      logging.Logger
	settleDelay time.Duration

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	sessionID   string
	state       State
	file        *media.File
	thumb       thumbnail.Result
	fileGen     uint64
	runGen      uint64
	cancelThumb context.CancelFunc
	settle      *time.Timer

	listeners   []func(Snapshot)
	pending     []Snapshot
	dispatching bool
}

// New returns an Idle orchestrator. extractor may be nil to skip previews;
// a negative settleDelay is treated as zero.
func New(uploader Uploader, extractor Extractor, settleDelay time.Duration, logger logging.Logger) *Orchestrator {
	ctx, stop := context.WithCancel(context.Background())
	return &Orchestrator{
		uploader:    uploader,
		extractor:   extractor,
		logger:      logger,
		settleDelay: max(settleDelay, 0),
		baseCtx:     ctx,
		stop:        stop,
		state:       Idle{},
	}
}

// Subscribe registers fn for every change. Calls are made from a single
// dispatcher goroutine in mutation order, so fn may call back into the
// orchestrator.
func (o *Orchestrator) Subscribe(fn func(Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// DownloadURL returns the absolute result URL once Completed.
func (o *Orchestrator) DownloadURL() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.state.(Completed)
	if !ok {
		return "", false
	}
	return o.uploader.DownloadURL(c.DownloadPath), true
}

// SelectFile makes file the current one from any state, clearing progress,
// result and error, and starts a fresh preview extraction.
func (o *Orchestrator) SelectFile(file *media.File) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || file == nil {
		return
	}

	o.supersedeLocked()
	o.file = file
	o.sessionID = uuid.NewString()
	o.state = Idle{}
	o.thumb = thumbnail.Pending()

	o.logger.Info(o.baseCtx, "video selected", "session", o.sessionID, "file", file.Name, "size", file.SizeMB())

	if o.extractor != nil {
		o.startExtractionLocked(file)
	}
	o.emitLocked()
}

// StartUpload begins uploading the selected file. It returns ErrNoFile or
// ErrBusy without issuing a request when the guard fails. ctx bounds the
// request itself; Reset does not cancel it, the result is just ignored.
func (o *Orchestrator) StartUpload(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return ErrClosed
	case o.file == nil:
		return ErrNoFile
	case busy(o.state):
		return ErrBusy
	}

	o.runGen++
	gen := o.runGen
	file := o.file
	log := o.logger.With("session", o.sessionID, "file", file.Name)

	o.state = Uploading{Progress: 0}
	o.emitLocked()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runUpload(ctx, log, gen, file)
	}()

	return nil
}

// Reset returns to Idle with no file. Calling it repeatedly is harmless.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	_, idle := o.state.(Idle)
	changed := !idle || o.file != nil

	o.supersedeLocked()
	o.file = nil
	o.sessionID = ""
	o.state = Idle{}
	o.thumb = thumbnail.Result{}

	if changed {
		o.emitLocked()
	}
}

// Close cancels extraction and pending timers. In-flight uploads finish on
// their own; Wait blocks until they have.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.supersedeLocked()
	o.stop()
}

// Wait blocks until every background goroutine has returned: uploads,
// extractions, a pending settle timer and listener dispatch.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) runUpload(ctx context.Context, log logging.Logger, gen uint64, file *media.File) {
	log.Info(ctx, "upload requested")

	resp, err := o.uploader.Upload(ctx, file, func(p int) { o.onProgress(gen, p) })

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.runGen {
		log.Debug(ctx, "discarding stale upload result")
		return
	}

	if err == nil && resp.DownloadURL == "" {
		err = client.ErrParse
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = unknownErrorText
		}
		log.Warn(ctx, "processing error", "error", err)
		o.state = Error{Message: msg}
		o.emitLocked()
		return
	}

	o.state = Processing{}
	o.emitLocked()

	path := resp.DownloadURL
	if o.settleDelay == 0 {
		o.completeLocked(log, path)
		return
	}
	o.wg.Add(1)
	o.settle = time.AfterFunc(o.settleDelay, func() {
		defer o.wg.Done()
		o.mu.Lock()
		defer o.mu.Unlock()
		if gen != o.runGen {
			return
		}
		if _, ok := o.state.(Processing); ok {
			o.completeLocked(log, path)
		}
	})
}

func (o *Orchestrator) completeLocked(log logging.Logger, path string) {
	o.state = Completed{DownloadPath: path}
	log.Info(o.baseCtx, "processing complete", "download_path", path)
	o.emitLocked()
}

func (o *Orchestrator) onProgress(gen uint64, p int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.runGen {
		return
	}
	up, ok := o.state.(Uploading)
	if !ok {
		return
	}
	p = min(max(p, 0), 100)
	if p <= up.Progress {
		return
	}
	o.state = Uploading{Progress: p}
	o.emitLocked()
}

func (o *Orchestrator) startExtractionLocked(file *media.File) {
	ctx, cancel := context.WithCancel(o.baseCtx)
	o.cancelThumb = cancel
	gen := o.fileGen

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()

		res := o.extractor.Extract(ctx, file)

		o.mu.Lock()
		defer o.mu.Unlock()
		if gen != o.fileGen {
			return
		}
		o.thumb = res
		o.emitLocked()
	}()
}

// supersedeLocked invalidates every outstanding async result.
func (o *Orchestrator) supersedeLocked() {
	o.fileGen++
	o.runGen++
	if o.cancelThumb != nil {
		o.cancelThumb()
		o.cancelThumb = nil
	}
	if o.settle != nil {
		if o.settle.Stop() {
			o.wg.Done()
		}
		o.settle = nil
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: o.sessionID,
		State:     o.state,
		File:      o.file,
		Thumbnail: o.thumb,
	}
}

func (o *Orchestrator) emitLocked() {
	if len(o.listeners) == 0 {
		return
	}
	o.pending = append(o.pending, o.snapshotLocked())
	if o.dispatching {
		return
	}
	o.dispatching = true
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.dispatch()
	}()
}

func (o *Orchestrator) dispatch() {
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.dispatching = false
			o.mu.Unlock()
			return
		}
		batch := o.pending
		o.pending = nil
		listeners := slices.Clone(o.listeners)
		o.mu.Unlock()

		for _, s := range batch {
			for _, fn := range listeners {
				fn(s)
			}
		}
	}
}
