package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	// It deliberately covers unknown accounts, disabled accounts, and wrong
	// passwords so callers cannot distinguish between them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed, expired, or wrong-kind token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthenticated indicates no valid identity could be derived from the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrInvalidEmail indicates the supplied email address is not parseable.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidUsername indicates the supplied username is empty or malformed.
	ErrInvalidUsername = errors.New("invalid username")
)

// DuplicateUserError reports a uniqueness conflict on registration or profile
// update. Field names the conflicting attribute, either "email" or "username".
type DuplicateUserError struct {
	Field string
}

// Error implements error for DuplicateUserError.
func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user with this %s already exists", e.Field)
}

// IsDuplicateUser reports whether err is a DuplicateUserError and returns the
// conflicting field when it is.
func IsDuplicateUser(err error) (string, bool) {
	var dup *DuplicateUserError
	if errors.As(err, &dup) {
		return dup.Field, true
	}
	return "", false
}
