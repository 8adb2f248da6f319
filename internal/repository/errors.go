package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// ConstraintViolationError reports a uniqueness constraint violated at write
// time, carrying the colliding field so callers can map it to a domain error.
type ConstraintViolationError struct {
	Field string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("repository: unique constraint violated on %s", e.Field)
}

// IsConstraintViolation reports whether err wraps a ConstraintViolationError
// and returns the colliding field when it does.
func IsConstraintViolation(err error) (string, bool) {
	var cv *ConstraintViolationError
	if errors.As(err, &cv) {
		return cv.Field, true
	}
	return "", false
}
