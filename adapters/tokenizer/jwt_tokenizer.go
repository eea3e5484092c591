// Package tokenizer implements the Tokenizer port with ES256 JWTs.
package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sattisvar/live-bootcamp-project/core"
	"github.com/sattisvar/live-bootcamp-project/ports"
)

// AudienceSession marks tokens issued for authenticated sessions.
const AudienceSession = "auth:session"

// JWTTokenizer implements the Tokenizer interface using JWT
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// Issue converts a Session to a signed JWT string
func (j *JWTTokenizer) Issue(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Email,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Parse verifies a JWT string and returns the embedded Session. When the
// token is valid except for being expired, the session is returned together
// with core.ErrTokenExpired so callers can still revoke it.
func (j *JWTTokenizer) Parse(tokenString string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, core.ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, core.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			// Signature checked out; surface the claims so the caller can
			// ban the token ID even after expiry.
			if token != nil {
				if claims, ok := token.Claims.(*SessionClaims); ok {
					return sessionFromClaims(claims), core.ErrTokenExpired
				}
			}
			return nil, core.ErrTokenExpired
		default:
			return nil, core.ErrInvalidSignature
		}
	}

	if !token.Valid {
		return nil, core.ErrInvalidSignature
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrMalformedToken
	}

	return sessionFromClaims(claims), nil
}

func sessionFromClaims(claims *SessionClaims) *core.Session {
	session := &core.Session{
		ID:    claims.ID,
		Email: claims.Subject,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session
}
