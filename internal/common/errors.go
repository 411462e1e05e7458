// Package common defines shared constants and sentinel errors used across
// the server, its host packages and the admin CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorPermissionDenied is returned when the viewer lacks a capability.
	ErrorPermissionDenied = errors.New("permission denied")

	// ErrorInvalidInput covers missing, non-numeric or zero identifiers.
	ErrorInvalidInput = errors.New("invalid input")

	// Auth errors (invalid or malformed token, wrong action or audience).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
