// Package media describes a video file picked by the user.
package media

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is a read-only handle to the selected video plus its metadata.
// It is never mutated after construction; reselecting creates a new File.
type File struct {
	Name     string
	Size     int64
	MIMEType string

	path string
	data []byte
}

// FromPath stats path and sniffs its MIME type from content.
func FromPath(path string) (*File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return &File{
		Name:     filepath.Base(path),
		Size:     fi.Size(),
		MIMEType: mt.String(),
		path:     path,
	}, nil
}

// FromBytes wraps in-memory content. An empty mimeType is sniffed.
func FromBytes(name, mimeType string, data []byte) *File {
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return &File{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: mimeType,
		data:     data,
	}
}

// Path returns the on-disk location, or "" for in-memory files.
func (f *File) Path() string {
	return f.path
}

// Open returns a fresh reader positioned at the start of the content.
// Every call yields an independent handle, so uploads and thumbnailing can
// read concurrently.
func (f *File) Open() (io.ReadSeekCloser, error) {
	if f.path != "" {
		return os.Open(f.path)
	}
	return nopCloser{bytes.NewReader(f.data)}, nil
}

// SizeMB formats the size the way the file card shows it, e.g. "12.34 MB".
func (f *File) SizeMB() string {
	return fmt.Sprintf("%.2f MB", float64(f.Size)/(1024*1024))
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
