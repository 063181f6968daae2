package service

import "errors"

// Caller-facing failure conditions. Handlers map these to HTTP status codes;
// anything else is an internal error and must not leak its message.
var (
	ErrMissingFields      = errors.New("please provide all required fields")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrInvalidSession     = errors.New("invalid or unpaid session")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
