package store

import "errors"

var (
	// ErrNotFound is returned when no record matches the filter, including
	// a record that exists but belongs to a different user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)
