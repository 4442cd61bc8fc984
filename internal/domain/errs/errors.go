// Package errs defines the sentinel errors shared across the application.
package errs

import "errors"

var (
	// ErrNotFound is returned when a referenced resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrRoomNotFound is returned when a chat room id does not resolve.
	ErrRoomNotFound = errors.New("no room exists for this id")

	// ErrUserNotFound is returned when one or more user ids do not resolve.
	ErrUserNotFound = errors.New("one or more user ids not found")

	// ErrAlreadyExists is returned when a uniqueness constraint is violated.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when credentials are missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
)
