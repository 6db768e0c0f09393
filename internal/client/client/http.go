package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/dmitrijs2005/vehicletrack/internal/filex"
	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	uploadPath       = "/upload/"
	licensePlatePath = "/detect_license_plate/"
	formField        = "file"

	maxResponseBytes = 1 << 20
)

// HTTPClient implements Client with net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	fs      afero.Fs
	logger  logging.Logger
}

// NewHTTPClient builds a client for baseURL. A zero timeout disables the
// per-request deadline; fs receives downloaded results.
func NewHTTPClient(baseURL string, timeout time.Duration, fs afero.Fs, logger logging.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		fs:      fs,
		logger:  logger,
	}
}

// Upload POSTs file as field "file" to /upload/.
func (c *HTTPClient) Upload(ctx context.Context, file *media.File, onProgress ProgressFunc) (*UploadResponse, error) {
	body, err := newFormBody(formField, file)
	if err != nil {
		return nil, err
	}
	defer body.closer.Close()

	tracker := newProgressTracker(body.length, onProgress)
	reader := io.NopCloser(&progressReader{r: body.reader, tracker: tracker})

	log := c.logger.With("file", file.Name, "size", humanize.Bytes(uint64(file.Size)))
	log.Info(ctx, "upload started", "url", c.baseURL+uploadPath)

	var out UploadResponse
	status, err := c.postForm(ctx, uploadPath, reader, body, &out)
	if err == nil && out.DownloadURL == "" {
		err = fmt.Errorf("%w: missing download_url", ErrParse)
	}

	tracker.finish(err == nil)

	if err != nil {
		log.Error(ctx, "upload failed", "status", status, "error", err)
		return nil, err
	}

	log.Info(ctx, "upload finished", "download_url", out.DownloadURL)
	return &out, nil
}

// DetectLicensePlate POSTs an image or frame to /detect_license_plate/.
func (c *HTTPClient) DetectLicensePlate(ctx context.Context, file *media.File) (*LicensePlateResponse, error) {
	body, err := newFormBody(formField, file)
	if err != nil {
		return nil, err
	}
	defer body.closer.Close()

	var out LicensePlateResponse
	if _, err := c.postForm(ctx, licensePlatePath, io.NopCloser(body.reader), body, &out); err != nil {
		c.logger.Error(ctx, "license plate detection failed", "file", file.Name, "error", err)
		return nil, err
	}

	c.logger.Info(ctx, "license plates detected", "file", file.Name, "count", len(out.LicensePlates))
	return &out, nil
}

// DownloadURL joins a server-relative path onto the base URL, dropping one
// leading slash from path.
func (c *HTTPClient) DownloadURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Download fetches the processed result into destDir through a temp file
// and returns the final path.
func (c *HTTPClient) Download(ctx context.Context, path, destDir string, onProgress func(written uint64)) (string, error) {
	dir, err := filex.EnsureDir(c.fs, destDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, filex.ResultName(path, "result.mp4"))
	tmp := target + ".tmp"

	url := c.DownloadURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newHTTPError(resp)
	}

	out, err := c.fs.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	counter := &WriteCounter{OnWrite: onProgress}
	if _, err := io.Copy(out, io.TeeReader(resp.Body, counter)); err != nil {
		out.Close()
		_ = c.fs.Remove(tmp)
		return "", fmt.Errorf("failed to copy data: %w", classify(err))
	}
	if err := out.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return "", err
	}

	if err := c.fs.Rename(tmp, target); err != nil {
		_ = c.fs.Remove(tmp)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	c.logger.Info(ctx, "download complete", "url", url, "path", target, "size", humanize.Bytes(counter.Total))
	return target, nil
}

// postForm sends a prepared multipart body and decodes a 2xx JSON reply
// into out. The returned status is 0 when no response arrived.
func (c *HTTPClient) postForm(ctx context.Context, path string, reader io.ReadCloser, body *formBody, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.ContentLength = body.length
	req.Header.Set("Content-Type", body.contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return resp.StatusCode, newHTTPError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, classify(err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return resp.StatusCode, nil
}

func newHTTPError(resp *http.Response) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{Status: resp.StatusCode, StatusText: text}
}

// classify maps a transport failure onto ErrTimeout or ErrNetwork while
// keeping the cause reachable through errors.Is/As.
func classify(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// WriteCounter tracks the number of bytes written through it.
type WriteCounter struct {
	Total   uint64
	OnWrite func(written uint64)
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Total += uint64(n)
	if wc.OnWrite != nil {
		wc.OnWrite(wc.Total)
	}
	return n, nil
}
