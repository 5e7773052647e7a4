package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record matched the query.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable means the store could not be reached. Callers
	// must surface it as a retryable condition, never as "not found".
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ConflictError reports which unique field an insert collided on.
type ConflictError struct {
	Field string // "username" or "email"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}
