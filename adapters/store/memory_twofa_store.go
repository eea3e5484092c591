package store

import (
	"context"
	"sync"
	"time"

	"github.com/sattisvar/live-bootcamp-project/core"
)

// MemoryTwoFACodeStore keeps at most one code entry per account. Issuing a
// new code replaces whatever was pending; a consumed entry stays around
// until its expiry so re-submitting a used code reads as "nothing pending"
// rather than a mismatch.
type MemoryTwoFACodeStore struct {
	codes map[string]core.TwoFACode
	ttl   time.Duration
	mu    sync.Mutex
}

// NewMemoryTwoFACodeStore creates a new in-memory two-factor code store
func NewMemoryTwoFACodeStore(ttl time.Duration) *MemoryTwoFACodeStore {
	if ttl <= 0 {
		ttl = DefaultTwoFACodeTTL
	}

	return &MemoryTwoFACodeStore{
		codes: make(map[string]core.TwoFACode),
		ttl:   ttl,
	}
}

// Issue generates a fresh code for the account, replacing any prior entry
func (s *MemoryTwoFACodeStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateTwoFACode()
	if err != nil {
		return "", err
	}

	email = core.NormalizeEmail(email)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[email] = core.TwoFACode{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	return code, nil
}

// Verify checks a submitted code against the pending entry. A match
// consumes the entry; a mismatch leaves it pending.
func (s *MemoryTwoFACodeStore) Verify(ctx context.Context, email, code string) error {
	email = core.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.codes[email]
	if !exists || entry.Consumed {
		return core.ErrNoCodePending
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(s.codes, email)
		return core.ErrCodeExpired
	}

	if !codesEqual(entry.Code, code) {
		return core.ErrCodeMismatch
	}

	entry.Consumed = true
	s.codes[email] = entry

	return nil
}
