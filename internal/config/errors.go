package config

import "errors"

// Sentinel kinds returned by Load, Validate and CheckCredentials.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
