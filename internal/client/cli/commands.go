package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/vehicletrack/internal/client/session"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
	"github.com/dmitrijs2005/vehicletrack/internal/thumbnail"
	"github.com/dmitrijs2005/vehicletrack/internal/validator"
)

const defaultThumbnailName = "thumbnail.jpg"

var (
	ErrRejected           = errors.New("file rejected")
	ErrNothingToDownload  = errors.New("no processed result yet")
	ErrPreviewUnavailable = errors.New("preview unavailable")
)

func (a *App) printError(msg string) {
	fmt.Fprintln(a.out, errorStyle.Render(msg))
}

// Select validates the file at path and makes it the current selection.
// A rejected file leaves the session untouched.
func (a *App) Select(ctx context.Context, path string) error {
	file, err := media.FromPath(path)
	if err != nil {
		a.printError("Cannot open file: " + err.Error())
		return err
	}

	if res := a.validator.Check(file); !res.Accepted {
		a.printError(res.Reason)
		return fmt.Errorf("%w: %s", ErrRejected, res.Reason)
	}

	a.session.SelectFile(file)
	fmt.Fprintf(a.out, "Selected %s (%s)\n", file.Name, file.SizeMB())
	return nil
}

// Upload starts an upload and blocks, redrawing progress, until the session
// reaches Completed or Error.
func (a *App) Upload(ctx context.Context) error {
	if err := a.session.StartUpload(ctx); err != nil {
		switch {
		case errors.Is(err, session.ErrNoFile):
			a.printError("Select a video file first")
		case errors.Is(err, session.ErrBusy):
			a.printError("An upload is already in progress")
		default:
			a.printError(err.Error())
		}
		return err
	}

	line := newProgressLine(a.out, a.tty)
	defer line.done()

	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()

	for {
		snap := a.session.Snapshot()
		switch st := snap.State.(type) {
		case session.Uploading:
			line.draw("Uploading " + ProgressBar{Value: float64(st.Progress), Max: 100}.String())
		case session.Processing:
			line.draw(infoStyle.Render(snap.Status()))
		case session.Completed:
			line.done()
			url, _ := a.session.DownloadURL()
			fmt.Fprintln(a.out, successStyle.Render(snap.Status()))
			fmt.Fprintln(a.out, "Result:", url)
			return nil
		case session.Error:
			line.done()
			a.printError(snap.Status())
			return errors.New(st.Message)
		default:
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()
	fmt.Fprintln(a.out, styleFor(snap.State).Render(snap.Status()))

	if snap.File != nil {
		fmt.Fprintf(a.out, "File: %s (%s, %s)\n", snap.File.Name, snap.File.SizeMB(), snap.File.MIMEType)
		fmt.Fprintln(a.out, mutedStyle.Render("Preview: "+snap.Thumbnail.Status.String()))
	}
	if up, ok := snap.State.(session.Uploading); ok {
		fmt.Fprintln(a.out, ProgressBar{Value: float64(up.Progress), Max: 100}.String())
	}
	if url, ok := a.session.DownloadURL(); ok {
		fmt.Fprintln(a.out, "Result:", url)
	}
	return nil
}

// Thumbnail writes the preview JPEG of the selected file to out.
func (a *App) Thumbnail(ctx context.Context, out string) error {
	snap := a.session.Snapshot()
	if snap.File == nil {
		a.printError("Select a video file first")
		return session.ErrNoFile
	}

	switch snap.Thumbnail.Status {
	case thumbnail.StatusPending:
		fmt.Fprintln(a.out, mutedStyle.Render("Preview is still being generated"))
		return ErrPreviewUnavailable
	case thumbnail.StatusFailed:
		a.printError("Preview unavailable for " + snap.File.Name)
		return ErrPreviewUnavailable
	}

	if out == "" {
		out = defaultThumbnailName
	}
	if err := afero.WriteFile(a.fs, out, snap.Thumbnail.Data, 0o644); err != nil {
		a.printError("Cannot save thumbnail: " + err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Thumbnail saved to %s\n", out)
	return nil
}

// Download saves the processed result into dir, or the configured download
// directory when dir is empty.
func (a *App) Download(ctx context.Context, dir string) error {
	c, ok := a.session.State().(session.Completed)
	if !ok {
		a.printError("Nothing to download yet")
		return ErrNothingToDownload
	}
	if dir == "" {
		dir = a.config.DownloadDir
	}

	line := newProgressLine(a.out, a.tty)
	var onProgress func(uint64)
	if a.tty {
		onProgress = func(n uint64) { line.draw("Downloading " + humanize.Bytes(n)) }
	}

	path, err := a.client.Download(ctx, c.DownloadPath, dir, onProgress)
	line.done()
	if err != nil {
		a.printError("Download failed: " + err.Error())
		return err
	}

	fmt.Fprintln(a.out, successStyle.Render("Saved to "+path))
	return nil
}

func (a *App) URL(ctx context.Context) error {
	url, ok := a.session.DownloadURL()
	if !ok {
		a.printError("No processed result yet")
		return ErrNothingToDownload
	}
	fmt.Fprintln(a.out, url)
	return nil
}

// Plates sends a still image to the license plate detector and prints
// every detection.
func (a *App) Plates(ctx context.Context, image string) error {
	file, err := media.FromPath(image)
	if err != nil {
		a.printError("Cannot open file: " + err.Error())
		return err
	}
	if !validator.MatchType(file.MIMEType, "image/*") {
		a.printError("Only image files are supported")
		return ErrRejected
	}

	resp, err := a.client.DetectLicensePlate(ctx, file)
	if err != nil {
		a.printError("Detection failed: " + err.Error())
		return err
	}

	if len(resp.LicensePlates) == 0 {
		fmt.Fprintln(a.out, "No license plates detected")
		return nil
	}
	for i, p := range resp.LicensePlates {
		fmt.Fprintf(a.out, "%d. %s  %.0f%%  (%.0f,%.0f)-(%.0f,%.0f)\n",
			i+1, p.Text, p.Confidence*100, p.X1, p.Y1, p.X2, p.Y2)
	}
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	a.session.Reset()
	fmt.Fprintln(a.out, "Selection cleared")
	return nil
}
