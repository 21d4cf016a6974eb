package usage

import "errors"

// ErrInvalidValue is returned when a usage value is negative or not a
// finite number. Zero is valid; negative readings are rejected rather than
// interpreted as generation.
var ErrInvalidValue = errors.New("usage value must be a non-negative finite number")
