// Package common defines sentinel errors shared by the repository, service
// and handler layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")

	// Service-level validation errors.
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmptyCredentials   = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
