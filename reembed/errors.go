package reembed

import "errors"

// ErrInvalidAttempts reports a retry budget of less than one try.
var ErrInvalidAttempts = errors.New("retry attempts must be positive")
