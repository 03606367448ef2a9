// Package domain defines the error taxonomy of the account feature.
//
// Every failure that leaves an account operation is a *Error tagged with a Kind.
// Error() returns only the human-readable message so that callers comparing
// message text keep working, while Kind lets them switch without parsing strings.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an account error.
type Kind int

const (
	// KindInternal is an unexpected fault, typically from the persistence layer.
	KindInternal Kind = iota
	// KindValidation is malformed or missing input.
	KindValidation
	// KindAuth is a bad credential. Its message is deliberately generic.
	KindAuth
	// KindConflict is a duplicate email on registration.
	KindConflict
	// KindNotFound is an unknown user id.
	KindNotFound
	// KindCredential is a hashing or token issuance failure seen by an account operation.
	KindCredential
	// KindCrypto is a low-level bcrypt or signing failure.
	KindCrypto
)

// String returns the code exposed to GraphQL clients in extensions.code.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindAuth:
		return "AUTH"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindCredential:
		return "CREDENTIAL"
	case KindCrypto:
		return "CRYPTO"
	default:
		return "INTERNAL"
	}
}

// User-visible messages. These strings are part of the public contract.
const (
	MsgInvalidEmail         = "Invalid email format"
	MsgInvalidPassword      = "Password must be at least 8 characters long and contain only alphanumeric characters"
	MsgInvalidName          = "Name must be between 3 and 30 characters"
	MsgHashedPasswordNeeded = "Hashed password is required"
	MsgUserIDRequired       = "User ID is required"
	MsgTokenUserIDInvalid   = "User ID is required to generate a token and must be a valid ObjectId"
	MsgPasswordRequired     = "Password is required and must be a string"
	MsgHashFailed           = "Failed to hash password"
	MsgCompareFailed        = "Failed to compare passwords"
	MsgSecretMissing        = "Token signing secret is not configured"
	MsgSignFailed           = "Failed to sign token"
	MsgBadCredentials       = "Email or password is incorrect"
	MsgEmailTaken           = "User with this email already exists"
	MsgUserNotFound         = "User not found"
	MsgTokenFailed          = "Failed to generate token"
	MsgCreateFailed         = "Failed to create user"
	MsgLoggedOut            = "Logged out successfully"
)

// Error is the tagged error returned by every account operation.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps each violated input field to its reason. Only set for KindValidation.
	Fields map[string]string
	cause  error
}

// New creates an Error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an Error that keeps cause reachable through errors.Unwrap.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// Error returns the message only; the cause is never shown to callers.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Extensions is picked up by the GraphQL executor and rendered under "extensions".
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Kind.String()}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}
	return ext
}

// Detail renders message and cause for logs.
func (e *Error) Detail() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// As converts err into an *Error, wrapping foreign errors as KindInternal with their message.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Wrap(KindInternal, err.Error(), err)
}
