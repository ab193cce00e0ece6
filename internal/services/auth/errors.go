package auth

import "errors"

// Errors surfaced to callers of Service.
var (
	// ErrMissingFields is returned by Login when email or password is absent.
	ErrMissingFields = errors.New("email and password are required")
	// ErrValidation wraps malformed registration input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateIdentity is returned when the email is already registered.
	ErrDuplicateIdentity = errors.New("registration failed")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned for missing, malformed or expired access tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidRefreshToken is returned for unknown, revoked or expired refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Errors returned by repository implementations.
var (
	ErrDuplicate            = errors.New("user with this email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrGenAccessToken       = errors.New("failed to generate access token")
)
