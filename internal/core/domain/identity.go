package domain

import (
	"strings"
	"time"
)

// User mirrors the persisted representation in the users table.
// Email and username are stored case-normalized and are globally unique.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the user safe to hand to callers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername lower-cases and trims a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
