// Package hasher provides the password hashing adapter.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/sattisvar/live-bootcamp-project/ports"
)

// Params controls the argon2id cost. The defaults follow the RFC 9106
// low-memory recommendation.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the production cost settings.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// argon2Hasher is a concrete implementation of the PasswordHasher interface
// using argon2id. The encoded output carries the algorithm, version, cost
// parameters and salt, so verification is self-describing.
type argon2Hasher struct {
	params Params
}

// NewArgon2Hasher creates a hasher with the default cost settings.
func NewArgon2Hasher() ports.PasswordHasher {
	return &argon2Hasher{params: DefaultParams()}
}

// NewArgon2HasherWithParams creates a hasher with custom cost settings.
// Lower costs are useful in tests.
func NewArgon2HasherWithParams(params Params) ports.PasswordHasher {
	return &argon2Hasher{params: params}
}

// Hash generates a salted argon2id hash from a plaintext password.
func (h *argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Check compares a plaintext password with an encoded hash. Any parse
// failure of the stored hash is reported as a mismatch.
func (h *argon2Hasher) Check(password, encoded string) bool {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// decodeHash parses the $argon2id$v=19$m=...,t=...,p=...$salt$key format.
func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("unsupported hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("failed to parse version: %w", err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("failed to parse cost parameters: %w", err)
	}

	// argon2.IDKey panics on zero rounds, zero lanes or too little memory,
	// so a corrupt stored hash must be rejected here rather than passed
	// through.
	if params.Iterations < 1 || params.Parallelism < 1 || params.Memory < 8*uint32(params.Parallelism) {
		return Params{}, nil, nil, fmt.Errorf("invalid cost parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("failed to decode key: %w", err)
	}

	if len(salt) == 0 || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("empty salt or key")
	}

	return params, salt, key, nil
}
