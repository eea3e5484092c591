package store

import (
	"context"
	"sync"
	"time"
)

// MemoryBannedTokenStore is an in-memory revocation set of token IDs
type MemoryBannedTokenStore struct {
	bannedTokens map[string]time.Time
	mu           sync.RWMutex
}

// NewMemoryBannedTokenStore creates a new in-memory banned token store
func NewMemoryBannedTokenStore() *MemoryBannedTokenStore {
	return &MemoryBannedTokenStore{
		bannedTokens: make(map[string]time.Time),
	}
}

// Ban adds a token ID to the revocation set until its ttl passes
func (s *MemoryBannedTokenStore) Ban(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiryTime := time.Now().Add(ttl)
	s.bannedTokens[tokenID] = expiryTime

	// Prune the entry once the token itself has expired; at that point the
	// expiry check rejects it regardless.
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		if storedExpiry, exists := s.bannedTokens[tokenID]; exists && !storedExpiry.After(expiryTime) {
			delete(s.bannedTokens, tokenID)
		}
	}()

	return nil
}

// IsBanned checks if a token ID is in the revocation set
func (s *MemoryBannedTokenStore) IsBanned(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiryTime, exists := s.bannedTokens[tokenID]
	if !exists {
		return false, nil
	}

	if time.Now().After(expiryTime) {
		return false, nil
	}

	return true, nil
}
