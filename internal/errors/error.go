// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownKind      = errors.New("unknown inventory kind")
	ErrPersist          = errors.New("can't persist inventory")
	ErrValidation       = errors.New("validation failed")
)

var (
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrInvalidCredentialField = errors.New("invalid credential field")
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
)
