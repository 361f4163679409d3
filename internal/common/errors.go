// Package common defines sentinel errors and small helpers shared by the
// repository, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Account lifecycle errors.
	ErrValidation          = errors.New("validation error")
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidVerification = errors.New("invalid verification key or email")
	ErrAccountNotFound     = errors.New("account not found")

	// Outbound mail could not be delivered.
	ErrNotifier = errors.New("notifier error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
