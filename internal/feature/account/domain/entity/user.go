// Package entity defines the domain entities for the account feature.
package entity

// User represents a registered account.
// Instances held by the usecase layer are request-scoped copies; the store owns the record.
type User struct {
	// ID is the 24-character hex ObjectID assigned on creation.
	ID string

	// Name is the display name (3-30 characters).
	Name string

	// Email is unique across all users.
	Email string

	// Password is the bcrypt hash. It never holds plaintext.
	Password string
}
