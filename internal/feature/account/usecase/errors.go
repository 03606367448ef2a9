// Package usecase implements the account operations: register, login, logout and lookup.
package usecase

import "errors"

// Repository contract errors. Adapters translate driver-specific conditions into these.
var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when the store rejects a duplicate email.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
