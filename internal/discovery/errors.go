package discovery

import "errors"

// Sentinel errors for discovery.
var (
	// ErrValidation indicates a caller mistake that aborts the walk: a root
	// that is not a directory, an entry that cannot be read, or a file over
	// the size limit.
	ErrValidation = errors.New("discovery validation failed")
)
