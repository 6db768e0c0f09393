package thumbnail

import (
	"context"
	"image"
	"time"

	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

// Metadata is what the decoder learns about a video before seeking.
type Metadata struct {
	Duration time.Duration
	Width    int
	Height   int
}

// Media is an open, seekable view of one file. Close releases whatever the
// decoder acquired in Open and is safe to call more than once.
type Media interface {
	LoadMetadata(ctx context.Context) (Metadata, error)
	Seek(ctx context.Context, at time.Duration) error
	CaptureFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Decoder opens files for frame capture.
type Decoder interface {
	Open(ctx context.Context, file *media.File) (Media, error)
}
