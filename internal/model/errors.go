package model

import "errors"

// Common errors used across the application
var (
	// Argument errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidID       = errors.New("malformed identifier")
	ErrInvalidScore    = errors.New("score values must be non-negative")
	ErrUnknownGameKind = errors.New("unknown game kind")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// Game record errors
	ErrGameNotFound = errors.New("game not found")

	// Authentication errors. Unknown email and wrong password both map here.
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInvalidToken = errors.New("invalid or expired token")
)
