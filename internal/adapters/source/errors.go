package source

import "errors"

// ErrDecode wraps malformed event lines.
var ErrDecode = errors.New("decode event")
