// Package store provides in-memory and Redis implementations of the
// authentication stores.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/sattisvar/live-bootcamp-project/core"
	"github.com/sattisvar/live-bootcamp-project/ports"
)

// MemoryUserStore is an in-memory implementation of the UserStore interface,
// keyed by normalized email.
type MemoryUserStore struct {
	users  map[string]core.User
	hasher ports.PasswordHasher
	mu     sync.RWMutex
}

// NewMemoryUserStore creates a new in-memory user store
func NewMemoryUserStore(hasher ports.PasswordHasher) *MemoryUserStore {
	return &MemoryUserStore{
		users:  make(map[string]core.User),
		hasher: hasher,
	}
}

// Add inserts a new user, failing if the email is already registered
func (s *MemoryUserStore) Add(ctx context.Context, user core.User) error {
	email := core.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return core.ErrUserAlreadyExists
	}

	user.Email = email
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[email] = user

	return nil
}

// Get returns the user registered under the given email
func (s *MemoryUserStore) Get(ctx context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[core.NormalizeEmail(email)]
	if !exists {
		return core.User{}, core.ErrUserNotFound
	}

	return user, nil
}

// dummyPasswordHash is a well-formed argon2id hash that matches no real
// password. Validate compares against it when the account does not exist,
// keeping the latency of the two failure modes alike.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=3,p=2$" +
	"AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Validate checks the supplied password against the stored hash and returns
// the account. The hash comparison runs outside the store lock so a burst
// of logins does not serialize unrelated store access behind argon2.
func (s *MemoryUserStore) Validate(ctx context.Context, email, password string) (core.User, error) {
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
