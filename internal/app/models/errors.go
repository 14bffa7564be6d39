package models

import "errors"

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when credentials do not check out.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidToken means the session cookie failed signature, format or
	// expiry verification.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrTooManyAttempts is returned by the sign-in throttle.
	ErrTooManyAttempts = errors.New("too many sign-in attempts")
)
