// Package filex contains small filesystem helpers shared by the client.
package filex

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir creates dir on fs if missing and returns its absolute form.
// Relative paths are resolved against the working directory.
func EnsureDir(fs afero.Fs, dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := fs.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ResultName returns the base name of a server download path, falling back
// when the path has no usable file component. The result never names a
// parent or current directory and never contains a separator.
func ResultName(downloadPath, fallback string) string {
	clean := strings.TrimRight(downloadPath, "/")
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	base := path.Base(clean)
	if base == "" || base == "." || base == ".." || strings.ContainsAny(base, `/\`) {
		return fallback
	}
	return base
}
