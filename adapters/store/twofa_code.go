package store

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// DefaultTwoFACodeTTL is how long an issued code stays verifiable.
const DefaultTwoFACodeTTL = 10 * time.Minute

const twoFACodeDigits = 6

// generateTwoFACode returns a 6-digit code drawn from crypto/rand.
func generateTwoFACode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < twoFACodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", twoFACodeDigits, n), nil
}

// codesEqual compares two codes without leaking partial matches through
// timing.
func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
