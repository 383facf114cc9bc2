package storage

import "errors"

var ErrLogClosed = errors.New("message log is closed")
