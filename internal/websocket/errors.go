package websocket

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidPayload   = errors.New("payload cannot be marshaled to JSON")
	ErrWriteBufferFull  = errors.New("write buffer full")
)
