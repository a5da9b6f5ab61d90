package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a draft does not exist or has been deleted.
	ErrNotFound = errors.New("draft not found")

	// ErrConflict is returned when a draft with the given ID already exists.
	ErrConflict = errors.New("draft already exists")
)
