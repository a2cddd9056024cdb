package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrRegistryClosed = errors.New("registry closed")
	ErrStoreClosed    = errors.New("store closed")
	ErrExtraction     = errors.New("text extraction failed")
)
