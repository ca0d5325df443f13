package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoSnapshot        = errors.New("no snapshot available")
	ErrInvalidRecord     = errors.New("invalid match record")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrRateLimited       = errors.New("rate limited")
	ErrLockHeld          = errors.New("lock already held")
	ErrContextDone       = errors.New("context cancelled")
)
