package core

import (
	"strings"
	"time"
)

// User represents a registered account
type User struct {
	Email         string    // Case-normalized account identifier
	PasswordHash  string    // Encoded argon2id hash, never the plaintext
	RequiresTwoFA bool      // Whether login must pass the second-factor step
	CreatedAt     time.Time // When the account was created
}

// TwoFACode represents a pending second-factor challenge
type TwoFACode struct {
	Email     string    // Owning account identifier
	Code      string    // The code delivered to the user out-of-band
	IssuedAt  time.Time // When the code was issued
	ExpiresAt time.Time // When the code stops being accepted
	Consumed  bool      // Set once the code has been used
}

// Session represents an authenticated user session carried by a token
type Session struct {
	ID        string    // Unique token identifier, used for revocation lookups
	Email     string    // Account the session belongs to
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}

// NormalizeEmail canonicalizes an account identifier so lookups and
// uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
