package repositories

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or was soft-deleted.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName is returned when a unique name constraint is violated.
	ErrDuplicateName = errors.New("name already taken")
)
