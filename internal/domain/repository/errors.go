package repository

import "errors"

// Errors every repository implementation translates its driver errors into.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")

	// ErrInUse: the row is still referenced (e.g. a user with orders).
	ErrInUse = errors.New("in use")

	// ErrVersionConflict: a compare-and-set write lost against a concurrent one.
	ErrVersionConflict = errors.New("version conflict")
)
