package repository

import "errors"

// Sentinel kinds for session errors.
var (
	ErrInvalidMode = errors.New("invalid mode")
)
