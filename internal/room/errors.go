package room

import "errors"

var (
	ErrNilMentor          = errors.New("mentor connection cannot be nil")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")
)
