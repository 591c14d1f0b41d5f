package cli

import "errors"

// Common CLI errors
var (
	ErrNoServices       = errors.New("no services configured")
	ErrValidationFailed = errors.New("validation failed")
)
