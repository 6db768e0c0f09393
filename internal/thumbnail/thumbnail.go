// Package thumbnail renders a single preview frame of a video.
//
// Extraction is best effort: failures are logged and reported as a Failed
// result, never as an error. Frame decoding sits behind the Decoder
// interface; FFmpegDecoder is the production implementation.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Result is Pending, Ready (with encoded image bytes) or Failed.
type Result struct {
	Status   Status
	Data     []byte
	MIMEType string
}

func Pending() Result { return Result{Status: StatusPending} }

func Failed() Result { return Result{Status: StatusFailed} }

func Ready(data []byte, mimeType string) Result {
	return Result{Status: StatusReady, Data: data, MIMEType: mimeType}
}

const (
	DefaultSeekFraction = 0.25
	DefaultJPEGQuality  = 85
)

var errEmptyFrame = errors.New("decoder returned an empty frame")

type Extractor struct {
	decoder      Decoder
	logger       logging.Logger
	seekFraction float64
	quality      int
}

func NewExtractor(decoder Decoder, logger logging.Logger) *Extractor {
	return &Extractor{
		decoder:      decoder,
		logger:       logger,
		seekFraction: DefaultSeekFraction,
		quality:      DefaultJPEGQuality,
	}
}

// Extract blocks until a terminal result is available. The media handle
// opened for file is always closed before returning.
func (e *Extractor) Extract(ctx context.Context, file *media.File) Result {
	data, err := e.extract(ctx, file)
	if err != nil {
		e.logger.Warn(ctx, "thumbnail generation failed", "file", file.Name, "error", err)
		return Failed()
	}

	e.logger.Debug(ctx, "thumbnail ready", "file", file.Name, "bytes", len(data))
	return Ready(data, "image/jpeg")
}

func (e *Extractor) extract(ctx context.Context, file *media.File) ([]byte, error) {
	m, err := e.decoder.Open(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			e.logger.Warn(ctx, "failed to release media handle", "file", file.Name, "error", cerr)
		}
	}()

	meta, err := m.LoadMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	if err := m.Seek(ctx, SeekTarget(meta.Duration, e.seekFraction)); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	frame, err := m.CaptureFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture frame: %w", err)
	}

	raster, err := render(frame, meta.Width, meta.Height)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, raster, imaging.JPEG, imaging.JPEGQuality(e.quality)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}

// SeekTarget returns fraction of duration; unknown durations seek to zero.
func SeekTarget(duration time.Duration, fraction float64) time.Duration {
	if duration <= 0 {
		return 0
	}
	return time.Duration(float64(duration) * fraction)
}

// render draws frame onto a surface of the media's native size. When the
// metadata carries no dimensions the frame's own bounds are used.
func render(frame image.Image, width, height int) (*image.NRGBA, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, errEmptyFrame
	}
	if width <= 0 || height <= 0 {
		width, height = frame.Bounds().Dx(), frame.Bounds().Dy()
	}

	surface := imaging.New(width, height, color.Black)
	return imaging.Paste(surface, frame, image.Pt(0, 0)), nil
}
