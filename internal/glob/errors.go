package glob

import "errors"

// Sentinel errors for glob operations.
var (
	// ErrInvalidPattern indicates a pattern that compiles to no rule.
	ErrInvalidPattern = errors.New("invalid pattern")
)
