package session

import "errors"

var (
	ErrNoFile = errors.New("no file selected")
	ErrBusy   = errors.New("upload already in progress")
	ErrClosed = errors.New("session closed")
)
