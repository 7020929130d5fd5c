package audio

import "errors"

var (
	ErrTruncated      = errors.New("read past end of buffer")
	ErrHeaderNotFound = errors.New("container header not found")
	ErrTagMismatch    = errors.New("container tag mismatch")
	ErrInvalidFrames  = errors.New("frame count must be positive")
)
