package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrInvalidTimeFormat = errors.New("invalid time format, expected M:SS")
	ErrConnectTimeout    = errors.New("connection attempt timed out")
	ErrConnectionFailed  = errors.New("connection failed")
	ErrNotConnected      = errors.New("not connected")
	ErrSynthesisFailed   = errors.New("synthesis failed")
	ErrNotFound          = errors.New("not found")
)
