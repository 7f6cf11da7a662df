package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrEmptyMatch            = errors.New("match has no events")
)
