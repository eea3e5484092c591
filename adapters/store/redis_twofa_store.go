package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sattisvar/live-bootcamp-project/core"
)

// RedisTwoFACodeStore is a Redis implementation of the TwoFACodeStore
// interface. Entries carry the code's own TTL, so expired codes vanish on
// their own. The verify path is a read-compare-write sequence, guarded by
// a store-level mutex so two concurrent submissions of the same code
// cannot both consume it.
type RedisTwoFACodeStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.Mutex
}

type redisCodeRecord struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Consumed bool      `json:"consumed"`
}

// NewRedisTwoFACodeStore creates a new Redis two-factor code store
func NewRedisTwoFACodeStore(client *redis.Client, ttl time.Duration) *RedisTwoFACodeStore {
	if ttl <= 0 {
		ttl = DefaultTwoFACodeTTL
	}

	return &RedisTwoFACodeStore{
		client: client,
		prefix: "auth:2fa:",
		ttl:    ttl,
	}
}

// Issue generates a fresh code for the account, replacing any prior entry
func (s *RedisTwoFACodeStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateTwoFACode()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(redisCodeRecord{
		Code:     code,
		IssuedAt: time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal code: %w", err)
	}

	key := s.prefix + core.NormalizeEmail(email)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// Verify checks a submitted code against the pending entry. A match marks
// the entry consumed for the remainder of its TTL; a mismatch leaves it
// pending.
func (s *RedisTwoFACodeStore) Verify(ctx context.Context, email, code string) error {
	key := s.prefix + core.NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Expired keys are dropped by Redis, so absent covers both
			// "never issued" and "expired"; report the former.
			return core.ErrNoCodePending
		}
		return fmt.Errorf("failed to fetch code: %w", err)
	}

	var record redisCodeRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return fmt.Errorf("failed to unmarshal code: %w", err)
	}

	if record.Consumed {
		return core.ErrNoCodePending
	}

	if !codesEqual(record.Code, code) {
		return core.ErrCodeMismatch
	}

	record.Consumed = true
	updated, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal code: %w", err)
	}

	// Keep the consumed marker for the key's remaining lifetime so a
	// replayed code reads as "nothing pending".
	if err := s.client.Set(ctx, key, updated, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}
