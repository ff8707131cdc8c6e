// Package models defines the core data structures for users and sessions.
package models

import "time"

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user. It is unique.
	Username string
	// Email is the address given at signup.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// CreatedAt is when the account was created.
	CreatedAt time.Time
}

// Session associates a browser client with an authenticated user.
type Session struct {
	// Token is the opaque value carried in the session cookie.
	Token string `json:"token"`
	// UserID references the owning user.
	UserID string `json:"user_id"`
	// Username is copied from the user at login time.
	Username string `json:"username"`
	// CreatedAt is when the session was established.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SignupForm is the transient payload of a signup submission.
type SignupForm struct {
	Username  string
	Email     string
	Password1 string
	Password2 string
}
