// Package common defines shared constants and sentinel errors used across
// client and server layers of the panel. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors are detectable before any storage or network call.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Second-factor errors. ErrSecondFactorRequired means the credentials
	// were fine but a TOTP code is missing or malformed; it must be routed
	// differently from a generic auth failure.
	ErrSecondFactorRequired = errors.New("second factor required")
	ErrInvalidTOTPCode      = errors.New("invalid totp code")
)
