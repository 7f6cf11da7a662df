package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrServeFailed = errors.New("metrics endpoint failed")
)
