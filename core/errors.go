package core

import "errors"

var (
	// Store errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Second-factor errors
	ErrNoCodePending = errors.New("no two-factor code pending")
	ErrCodeExpired   = errors.New("two-factor code has expired")
	ErrCodeMismatch  = errors.New("two-factor code does not match")

	// Token errors
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")

	// Errors exposed at the authentication boundary. Login failures and
	// second-factor failures collapse to these so callers cannot tell a
	// missing account from a wrong password, or a wrong code from an
	// expired one.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)
