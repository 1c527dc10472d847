package ignore

import "errors"

// Sentinel errors for ignore operations.
var (
	// ErrIgnoreFile indicates an ignore file that could not be read.
	ErrIgnoreFile = errors.New("failed to read ignore file")
)
