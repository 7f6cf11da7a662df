package pitch

import "errors"

// ErrInvalidGeometry is returned for non-positive dimensions or out-of-range fractions.
var ErrInvalidGeometry = errors.New("invalid pitch geometry")
