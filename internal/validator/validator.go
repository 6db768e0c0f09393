// Package validator gates file selection on declared type and size.
package validator

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vehicletrack/internal/media"
)

const bytesPerMB = 1024 * 1024

// Result is either accepted or rejected with a human-readable reason.
type Result struct {
	Accepted bool
	Reason   string
}

func Accept() Result { return Result{Accepted: true} }

func Reject(reason string) Result { return Result{Reason: reason} }

// Validate checks file against acceptedTypePattern and maxSizeBytes.
// The type check runs first, so a wrong type is reported even when the
// file is also too large.
//
// acceptedTypePattern is an exact MIME type ("video/mp4"), a wildcard
// subtype ("video/*"), or a comma-separated list of those.
func Validate(file *media.File, acceptedTypePattern string, maxSizeBytes int64) Result {
	if !MatchType(file.MIMEType, acceptedTypePattern) {
		return Reject(fmt.Sprintf("Only %s files are supported", acceptedTypePattern))
	}

	if file.Size > maxSizeBytes {
		return Reject(fmt.Sprintf("File size exceeds %sMB limit", formatMB(maxSizeBytes)))
	}

	return Accept()
}

// MatchType reports whether the declared type satisfies pattern.
// Parameters such as "; codecs=..." are ignored and comparison is
// case-insensitive.
func MatchType(declared, pattern string) bool {
	typ := normalize(declared)
	if typ == "" {
		return false
	}

	for _, p := range strings.Split(pattern, ",") {
		p = normalize(p)
		switch {
		case p == "":
			continue
		case p == "*/*" || p == typ:
			return true
		case strings.HasSuffix(p, "/*"):
			if strings.HasPrefix(typ, strings.TrimSuffix(p, "*")) {
				return true
			}
		}
	}

	return false
}

// Validator bundles a configured pattern and size ceiling.
type Validator struct {
	Pattern  string
	MaxBytes int64
}

func New(pattern string, maxBytes int64) *Validator {
	return &Validator{Pattern: pattern, MaxBytes: maxBytes}
}

func (v *Validator) Check(file *media.File) Result {
	return Validate(file, v.Pattern, v.MaxBytes)
}

func normalize(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(t)
}

func formatMB(n int64) string {
	return strconv.FormatFloat(float64(n)/bytesPerMB, 'f', -1, 64)
}
