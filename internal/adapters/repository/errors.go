package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrStoreClosed    = errors.New("store closed")
	ErrLengthMismatch = errors.New("annotation length does not match events")
)
