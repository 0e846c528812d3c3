package model

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrPermissionDenied is returned when a caller addresses another owner's data.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated is returned when a call requires a signed-in user.
	ErrUnauthenticated = errors.New("not signed in")
)
