package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sattisvar/live-bootcamp-project/core"
	"github.com/sattisvar/live-bootcamp-project/ports"
)

// RedisUserStore is a Redis implementation of the UserStore interface.
// Uniqueness is enforced with SETNX so concurrent signups for the same
// email resolve to exactly one winner.
type RedisUserStore struct {
	client *redis.Client
	hasher ports.PasswordHasher
	prefix string
}

type redisUserRecord struct {
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	RequiresTwoFA bool      `json:"requires_2fa"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewRedisUserStore creates a new Redis user store
func NewRedisUserStore(client *redis.Client, hasher ports.PasswordHasher) *RedisUserStore {
	return &RedisUserStore{
		client: client,
		hasher: hasher,
		prefix: "auth:user:",
	}
}

// Add inserts a new user, failing if the email is already registered
func (s *RedisUserStore) Add(ctx context.Context, user core.User) error {
	email := core.NormalizeEmail(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(redisUserRecord{
		Email:         email,
		PasswordHash:  user.PasswordHash,
		RequiresTwoFA: user.RequiresTwoFA,
		CreatedAt:     user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	inserted, err := s.client.SetNX(ctx, s.prefix+email, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	if !inserted {
		return core.ErrUserAlreadyExists
	}

	return nil
}

// Get returns the user registered under the given email
func (s *RedisUserStore) Get(ctx context.Context, email string) (core.User, error) {
	payload, err := s.client.Get(ctx, s.prefix+core.NormalizeEmail(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	var record redisUserRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return core.User{}, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return core.User{
		Email:         record.Email,
		PasswordHash:  record.PasswordHash,
		RequiresTwoFA: record.RequiresTwoFA,
		CreatedAt:     record.CreatedAt,
	}, nil
}

// Validate checks the supplied password against the stored hash and returns
// the account. A missing account still pays for a hash comparison, against
// dummyPasswordHash, so the two failure modes take comparable time.
func (s *RedisUserStore) Validate(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		s.hasher.Check(password, dummyPasswordHash)
		return core.User{}, err
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return core.User{}, core.ErrInvalidCredentials
	}

	return user, nil
}
