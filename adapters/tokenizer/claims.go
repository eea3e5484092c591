package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the standard claims carried by a session token. The
// subject is the account email and the JWT ID is the revocation key.
type SessionClaims struct {
	jwt.RegisteredClaims
}
