package conversation

import "errors"

var (
	// ErrMessageRequired is returned for a missing or blank message.
	ErrMessageRequired = errors.New("message required")
	// ErrNotConfigured is returned when no text-generation backend is available.
	ErrNotConfigured = errors.New("text generation backend not configured")
)
