package pack

import "errors"

// ErrOptions indicates invalid packing options.
var ErrOptions = errors.New("invalid pack options")
