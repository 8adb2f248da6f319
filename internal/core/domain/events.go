package domain

import "time"

// UserRegisteredEvent is emitted after a new account is persisted.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RegisteredAt time.Time
}

// UserLoggedInEvent is emitted after successful credential verification.
type UserLoggedInEvent struct {
	EventID    string
	UserID     string
	Identifier string
	LoggedInAt time.Time
}

// UserDeactivatedEvent is emitted when an account is logically deleted.
type UserDeactivatedEvent struct {
	EventID       string
	UserID        string
	DeactivatedAt time.Time
}
