package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vehicletrack/internal/logging"
	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *HTTPClient {
	t.Helper()
	return NewHTTPClient(url, timeout, afero.NewMemMapFs(), logging.Discard())
}

func videoFile(size int) *media.File {
	return media.FromBytes("clip.mp4", "video/mp4", bytes.Repeat([]byte{0xAB}, size))
}

type progressLog struct {
	mu     sync.Mutex
	values []int
}

func (p *progressLog) record(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, v)
}

func (p *progressLog) snapshot() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.values...)
}

func TestUpload_Success(t *testing.T) {
	payload := bytes.Repeat([]byte("frame"), 2000)
	file := media.FromBytes("clip.mp4", "video/mp4", payload)

	var (
		gotMethod, gotPath, gotName, gotPartType string
		gotBody                                  []byte
		gotLength                                int64
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotLength = r.ContentLength

		f, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"ok","download_url":"/result/out.mp4"}`)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, 0)
	var progress progressLog

	resp, err := c.Upload(context.Background(), file, progress.record)
	require.NoError(t, err)

	assert.Equal(t, &UploadResponse{Message: "ok", DownloadURL: "/result/out.mp4"}, resp)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/upload/", gotPath)
	assert.Equal(t, "clip.mp4", gotName)
	assert.Equal(t, "video/mp4", gotPartType)
	assert.Equal(t, payload, gotBody)
	assert.Greater(t, gotLength, int64(len(payload)))

	values := progress.snapshot()
	require.NotEmpty(t, values)
	assert.Equal(t, 100, values[len(values)-1])
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards: %v", values)
	}
}

func TestUpload_NoProgressObserver(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, `{"message":"ok","download_url":"out.mp4"}`)
	}))
	defer ts.Close()

	resp, err := newTestClient(t, ts.URL, 0).Upload(context.Background(), videoFile(10), nil)
	require.NoError(t, err)
	assert.Equal(t, "out.mp4", resp.DownloadURL)
}

func TestUpload_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	var progress progressLog
	_, err := newTestClient(t, ts.URL, 0).Upload(context.Background(), videoFile(1024), progress.record)
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "Internal Server Error", httpErr.StatusText)
	assert.Contains(t, err.Error(), "500")

	for _, v := range progress.snapshot() {
		assert.LessOrEqual(t, v, 100)
	}
}

func TestUpload_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "missing download_url", body: `{"message":"ok"}`},
		{name: "wrong shape", body: `{"download_url":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			_, err := newTestClient(t, ts.URL, 0).Upload(context.Background(), videoFile(16), nil)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestUpload_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newTestClient(t, url, 0).Upload(context.Background(), videoFile(16), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := newTestClient(t, ts.URL, 50*time.Millisecond).Upload(context.Background(), videoFile(16), nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestUpload_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, ts.URL, 0).Upload(ctx, videoFile(16), nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestDetectLicensePlate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect_license_plate/" {
			http.NotFound(w, r)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"license_plates":[{"x1":1,"y1":2,"x2":30,"y2":12,"confidence":0.91,"text":"AB123CD"}]}`)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL, 0)
	resp, err := c.DetectLicensePlate(context.Background(), media.FromBytes("car.jpg", "image/jpeg", []byte("jpeg")))
	require.NoError(t, err)
	require.Len(t, resp.LicensePlates, 1)
	assert.Equal(t, LicensePlate{X1: 1, Y1: 2, X2: 30, Y2: 12, Confidence: 0.91, Text: "AB123CD"}, resp.LicensePlates[0])
}

func TestDetectLicensePlate_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts.URL, 0).DetectLicensePlate(context.Background(), videoFile(4))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 422, httpErr.Status)
}

func TestDownloadURL(t *testing.T) {
	c := newTestClient(t, "http://localhost:8000", 0)

	assert.Equal(t, "http://localhost:8000/result/out.mp4", c.DownloadURL("/result/out.mp4"))
	assert.Equal(t, "http://localhost:8000/result/out.mp4", c.DownloadURL("result/out.mp4"))

	trailing := newTestClient(t, "http://backend:9000/", 0)
	assert.Equal(t, "http://backend:9000/x.mp4", trailing.DownloadURL("/x.mp4"))

	assert.Equal(t, "http://localhost:8000/a.mp4", newTestClient(t, "", 0).DownloadURL("a.mp4"))
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/result/out.mp4" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "processed-video")
	}))
	defer ts.Close()

	fs := afero.NewMemMapFs()
	c := NewHTTPClient(ts.URL, 0, fs, logging.Discard())

	var last uint64
	path, err := c.Download(context.Background(), "/result/out.mp4", "/downloads", func(n uint64) { last = n })
	require.NoError(t, err)
	assert.Equal(t, "/downloads/out.mp4", path)
	assert.Equal(t, uint64(len("processed-video")), last)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "processed-video", string(data))

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = c.Download(context.Background(), "/missing.mp4", "/downloads", nil)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestDownload_NameStaysInsideDestDir(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "processed-video")
	}))
	defer ts.Close()

	fs := afero.NewMemMapFs()
	c := NewHTTPClient(ts.URL, 0, fs, logging.Discard())

	for _, p := range []string{"/result/..", "/result/.", ".."} {
		path, err := c.Download(context.Background(), p, "/srv/downloads", nil)
		require.NoError(t, err, p)
		assert.Equal(t, "/srv/downloads/result.mp4", path, p)
	}

	isDir, err := afero.IsDir(fs, "/srv")
	require.NoError(t, err)
	assert.True(t, isDir)

	entries, err := afero.ReadDir(fs, "/srv")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "downloads", entries[0].Name())
}

func TestDownload_RenameFailureRemovesTemp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "processed-video")
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "downloads")
	blocker := filepath.Join(dest, "out.mp4")
	require.NoError(t, os.MkdirAll(blocker, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o600))

	c := NewHTTPClient(ts.URL, 0, afero.NewOsFs(), logging.Discard())

	_, err := c.Download(context.Background(), "/result/out.mp4", dest, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to rename temporary file")

	_, err = os.Stat(blocker + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be removed")
}

func TestWriteCounter(t *testing.T) {
	wc := &WriteCounter{}
	n, err := wc.Write([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, 11, n)
	require.Equal(t, uint64(11), wc.Total)
}
