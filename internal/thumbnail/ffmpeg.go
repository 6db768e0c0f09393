package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

var (
	ErrNoVideoStream = errors.New("no video stream")
	ErrSeekRange     = errors.New("seek target outside media")
)

// FFmpegDecoder decodes frames with the ffprobe and ffmpeg binaries.
type FFmpegDecoder struct {
	FFprobePath string
	FFmpegPath  string
	// TempDir receives spooled copies of in-memory files; "" means os.TempDir.
	TempDir string
}

func NewFFmpegDecoder() *FFmpegDecoder {
	return &FFmpegDecoder{FFprobePath: "ffprobe", FFmpegPath: "ffmpeg"}
}

// Open holds a read handle on disk-backed files for the lifetime of the
// Media. In-memory files are spooled to a temp file that Close removes.
func (d *FFmpegDecoder) Open(ctx context.Context, file *media.File) (Media, error) {
	if path := file.Path(); path != "" {
		h, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return d.newMedia(path, h.Close), nil
	}

	path, err := d.spool(file)
	if err != nil {
		return nil, fmt.Errorf("spool %s: %w", file.Name, err)
	}
	return d.newMedia(path, func() error { return os.Remove(path) }), nil
}

func (d *FFmpegDecoder) newMedia(path string, release func() error) *ffmpegMedia {
	return &ffmpegMedia{decoder: d, path: path, release: release}
}

func (d *FFmpegDecoder) spool(file *media.File) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(d.TempDir, "vehicletrack-*"+filepath.Ext(file.Name))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

type ffmpegMedia struct {
	decoder *FFmpegDecoder
	path    string

	meta     Metadata
	position time.Duration

	closeOnce sync.Once
	closeErr  error
	release   func() error
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (m *ffmpegMedia) LoadMetadata(ctx context.Context) (Metadata, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		m.path,
	}

	out, err := exec.CommandContext(ctx, m.decoder.FFprobePath, args...).Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("ffprobe: %w", err)
	}

	meta, err := parseProbe(out)
	if err != nil {
		return Metadata{}, err
	}
	m.meta = meta
	return meta, nil
}

func parseProbe(out []byte) (Metadata, error) {
	var p probeOutput
	if err := json.Unmarshal(out, &p); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(p.Streams) == 0 {
		return Metadata{}, ErrNoVideoStream
	}

	meta := Metadata{Width: p.Streams[0].Width, Height: p.Streams[0].Height}

	if p.Format.Duration != "" && p.Format.Duration != "N/A" {
		secs, err := strconv.ParseFloat(p.Format.Duration, 64)
		if err != nil {
			return Metadata{}, fmt.Errorf("parse duration '%s': %w", p.Format.Duration, err)
		}
		meta.Duration = time.Duration(secs * float64(time.Second))
	}

	return meta, nil
}

func (m *ffmpegMedia) Seek(_ context.Context, at time.Duration) error {
	if at < 0 || (m.meta.Duration > 0 && at > m.meta.Duration) {
		return fmt.Errorf("%w: %s", ErrSeekRange, at)
	}
	m.position = at
	return nil
}

// CaptureFrame asks ffmpeg for a single PNG frame at the current position.
// stdout is decoded while stderr is drained, so neither pipe can stall the
// process.
func (m *ffmpegMedia) CaptureFrame(ctx context.Context) (image.Image, error) {
	g, gctx := errgroup.WithContext(ctx)

	cmd := exec.CommandContext(gctx, m.decoder.FFmpegPath, captureArgs(m.path, m.position)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	var frame image.Image
	g.Go(func() error {
		img, err := png.Decode(stdout)
		_, _ = io.Copy(io.Discard, stdout)
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}
		frame = img
		return nil
	})

	var errOut bytes.Buffer
	g.Go(func() error {
		_, err := io.Copy(&errOut, io.LimitReader(stderr, 64<<10))
		_, _ = io.Copy(io.Discard, stderr)
		return err
	})

	gerr := g.Wait()
	werr := cmd.Wait()

	if werr != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", werr, bytes.TrimSpace(errOut.Bytes()))
	}
	if gerr != nil {
		return nil, gerr
	}
	return frame, nil
}

func captureArgs(path string, at time.Duration) []string {
	return []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(at.Seconds(), 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}
}

func (m *ffmpegMedia) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.release()
	})
	return m.closeErr
}
