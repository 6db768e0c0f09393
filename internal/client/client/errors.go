package client

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork = errors.New("network error occurred")
	ErrTimeout = errors.New("request timed out")
	ErrParse   = errors.New("invalid response format")
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Status     int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Status, e.StatusText)
}
