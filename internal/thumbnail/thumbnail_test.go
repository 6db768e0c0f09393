package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

type fakeMedia struct {
	meta       Metadata
	metaErr    error
	seekErr    error
	frame      image.Image
	captureErr error

	seekedTo time.Duration
	closed   int
}

func (m *fakeMedia) LoadMetadata(context.Context) (Metadata, error) { return m.meta, m.metaErr }

func (m *fakeMedia) Seek(_ context.Context, at time.Duration) error {
	m.seekedTo = at
	return m.seekErr
}

func (m *fakeMedia) CaptureFrame(context.Context) (image.Image, error) {
	return m.frame, m.captureErr
}

func (m *fakeMedia) Close() error {
	m.closed++
	return nil
}

type fakeDecoder struct {
	media   *fakeMedia
	openErr error
}

func (d *fakeDecoder) Open(context.Context, *media.File) (Media, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.media, nil
}

func solidFrame(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func testFile() *media.File {
	return media.FromBytes("clip.mp4", "video/mp4", []byte("not really a video"))
}

func TestExtract_ReadyAtQuarterDuration(t *testing.T) {
	m := &fakeMedia{
		meta:  Metadata{Duration: 8 * time.Second, Width: 32, Height: 24},
		frame: solidFrame(32, 24),
	}
	e := NewExtractor(&fakeDecoder{media: m}, logging.Discard())

	res := e.Extract(context.Background(), testFile())

	require.Equal(t, StatusReady, res.Status)
	assert.Equal(t, "image/jpeg", res.MIMEType)
	assert.Equal(t, 2*time.Second, m.seekedTo)
	assert.Equal(t, 1, m.closed)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestExtract_RasterUsesNativeSize(t *testing.T) {
	m := &fakeMedia{
		meta:  Metadata{Duration: time.Second, Width: 40, Height: 30},
		frame: solidFrame(20, 10),
	}
	e := NewExtractor(&fakeDecoder{media: m}, logging.Discard())

	res := e.Extract(context.Background(), testFile())
	require.Equal(t, StatusReady, res.Status)

	img, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestExtract_FailuresAreContained(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		media      *fakeMedia
		wantClosed int
	}{
		{name: "metadata", media: &fakeMedia{metaErr: boom}, wantClosed: 1},
		{name: "seek", media: &fakeMedia{seekErr: boom}, wantClosed: 1},
		{name: "capture", media: &fakeMedia{captureErr: boom}, wantClosed: 1},
		{name: "empty frame", media: &fakeMedia{}, wantClosed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeDecoder{media: tt.media}, logging.Discard())

			res := e.Extract(context.Background(), testFile())

			assert.Equal(t, StatusFailed, res.Status)
			assert.Empty(t, res.Data)
			assert.Equal(t, tt.wantClosed, tt.media.closed)
		})
	}
}

func TestExtract_OpenFailure(t *testing.T) {
	e := NewExtractor(&fakeDecoder{openErr: errors.New("denied")}, logging.Discard())
	assert.Equal(t, Failed(), e.Extract(context.Background(), testFile()))
}

func TestSeekTarget(t *testing.T) {
	assert.Equal(t, 2500*time.Millisecond, SeekTarget(10*time.Second, 0.25))
	assert.Equal(t, time.Duration(0), SeekTarget(0, 0.25))
	assert.Equal(t, time.Duration(0), SeekTarget(-time.Second, 0.25))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending().Status.String())
	assert.Equal(t, "ready", Ready(nil, "image/jpeg").Status.String())
	assert.Equal(t, "failed", Failed().Status.String())
}
