package ports

import "github.com/sattisvar/live-bootcamp-project/core"

// Tokenizer converts between sessions and signed token strings
type Tokenizer interface {
	// Issue signs the session into a self-contained token string.
	Issue(session *core.Session) (string, error)

	// Parse verifies a token string and returns the embedded session.
	// Failures map to core.ErrMalformedToken, core.ErrInvalidSignature or
	// core.ErrTokenExpired. When the only failure is expiry, the session
	// is returned alongside core.ErrTokenExpired so an expired token can
	// still be revoked.
	Parse(tokenString string) (*core.Session, error)
}
