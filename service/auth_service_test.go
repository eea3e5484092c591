package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sattisvar/live-bootcamp-project/adapters/store"
	"github.com/sattisvar/live-bootcamp-project/adapters/tokenizer"
	"github.com/sattisvar/live-bootcamp-project/core"
	"github.com/sattisvar/live-bootcamp-project/ports"
)

// fakeHasher keeps tests fast; the real argon2 hasher has its own tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Check(password, encoded string) bool  { return encoded == "hashed:"+password }

// fakePublisher records events and can be told to fail.
type fakePublisher struct {
	mu          sync.Mutex
	registered  []string
	loggedOut   []string
	failPublish bool
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublish {
		return errors.New("broker down")
	}
	p.registered = append(p.registered, email)
	return nil
}

func (p *fakePublisher) PublishLogout(ctx context.Context, email, tokenID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublish {
		return errors.New("broker down")
	}
	p.loggedOut = append(p.loggedOut, tokenID)
	return nil
}

type testEnv struct {
	svc       *AuthService
	publisher *fakePublisher
	sentCodes map[string]string
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	hasher := fakeHasher{}
	publisher := &fakePublisher{}
	env := &testEnv{
		publisher: publisher,
		sentCodes: make(map[string]string),
	}

	var mu sync.Mutex
	capture := func(ctx context.Context, email, code string) error {
		mu.Lock()
		defer mu.Unlock()
		env.sentCodes[email] = code
		return nil
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env.svc = NewAuthService(
		store.NewMemoryUserStore(hasher),
		store.NewMemoryTwoFACodeStore(time.Minute),
		store.NewMemoryBannedTokenStore(),
		hasher,
		tokenizer.NewJWTTokenizer(key),
		publisher,
		logger,
		append([]Option{WithCodeSender(capture)}, opts...)...,
	)

	return env
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))

	// Duplicate identifiers are rejected, case-insensitively.
	assert.ErrorIs(t, env.svc.Signup(ctx, "alice@example.com", "Other456", false), core.ErrUserAlreadyExists)
	assert.ErrorIs(t, env.svc.Signup(ctx, "ALICE@Example.COM", "Other456", true), core.ErrUserAlreadyExists)

	assert.Equal(t, []string{"alice@example.com"}, env.publisher.registered)
}

func TestSignup_PublishFailureDoesNotFailSignup(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.failPublish = true

	assert.NoError(t, env.svc.Signup(context.Background(), "alice@example.com", "Secret123", false))
}

func TestLogin_WithoutTwoFA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))

	result, err := env.svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.False(t, result.TwoFARequired)
	require.NotEmpty(t, result.Token)

	email, err := env.svc.VerifyToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))

	// Unknown account and wrong password must look identical to a caller.
	_, unknownErr := env.svc.Login(ctx, "nobody@example.com", "Secret123")
	_, wrongPassErr := env.svc.Login(ctx, "alice@example.com", "WrongPass")

	assert.ErrorIs(t, unknownErr, core.ErrAuthenticationFailed)
	assert.ErrorIs(t, wrongPassErr, core.ErrAuthenticationFailed)
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

// countingUserStore counts account lookups made through the port.
type countingUserStore struct {
	ports.UserStore
	mu      sync.Mutex
	lookups int
}

func (s *countingUserStore) Get(ctx context.Context, email string) (core.User, error) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()
	return s.UserStore.Get(ctx, email)
}

func (s *countingUserStore) Validate(ctx context.Context, email, password string) (core.User, error) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()
	return s.UserStore.Validate(ctx, email, password)
}

func TestLogin_SingleAccountLookup(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	hasher := fakeHasher{}
	users := &countingUserStore{UserStore: store.NewMemoryUserStore(hasher)}
	svc := NewAuthService(
		users,
		store.NewMemoryTwoFACodeStore(time.Minute),
		store.NewMemoryBannedTokenStore(),
		hasher,
		tokenizer.NewJWTTokenizer(key),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, "alice@example.com", "Secret123", false))
	users.mu.Lock()
	users.lookups = 0
	users.mu.Unlock()

	_, err = svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)

	// Validate fetches and checks in one call; a login costs one store
	// round-trip.
	assert.Equal(t, 1, users.lookups)
}

func TestLogin_WithTwoFA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "bob@example.com", "Pw1", true))

	result, err := env.svc.Login(ctx, "bob@example.com", "Pw1")
	require.NoError(t, err)
	assert.True(t, result.TwoFARequired)
	assert.Empty(t, result.Token)

	code := env.sentCodes["bob@example.com"]
	require.NotEmpty(t, code)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// A wrong code fails without consuming the pending challenge.
	_, err = env.svc.VerifyTwoFA(ctx, "bob@example.com", wrong)
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredCode)

	token, err := env.svc.VerifyTwoFA(ctx, "bob@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := env.svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)

	// The code is single use.
	_, err = env.svc.VerifyTwoFA(ctx, "bob@example.com", code)
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredCode)
}

func TestVerifyTwoFA_WithoutPendingLogin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyTwoFA(context.Background(), "bob@example.com", "123456")
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredCode)
}

func TestLogin_CodeDeliveryFailureFailsLogin(t *testing.T) {
	env := newTestEnv(t, WithCodeSender(func(ctx context.Context, email, code string) error {
		return errors.New("smtp down")
	}))
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "bob@example.com", "Pw1", true))

	_, err := env.svc.Login(ctx, "bob@example.com", "Pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrAuthenticationFailed)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))
	result, err := env.svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, result.Token))

	_, err = env.svc.VerifyToken(ctx, result.Token)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	// Revoking twice is idempotent.
	assert.NoError(t, env.svc.Logout(ctx, result.Token))

	assert.Len(t, env.publisher.loggedOut, 2)
}

func TestLogout_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Logout(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, core.ErrMalformedToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, core.ErrMalformedToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	env := newTestEnv(t, WithSessionTTL(time.Millisecond))
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))
	result, err := env.svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = env.svc.VerifyToken(ctx, result.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	// Expired tokens can still be logged out.
	assert.NoError(t, env.svc.Logout(ctx, result.Token))
}

func TestFullFlow_WithoutTwoFA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))

	result, err := env.svc.Login(ctx, "alice@example.com", "Secret123")
	require.NoError(t, err)

	email, err := env.svc.VerifyToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	require.NoError(t, env.svc.Logout(ctx, result.Token))

	_, err = env.svc.VerifyToken(ctx, result.Token)
	assert.Error(t, err)
}

func TestConcurrentLogins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Signup(ctx, "alice@example.com", "Secret123", false))

	const workers = 16
	tokens := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := env.svc.Login(ctx, "alice@example.com", "Secret123")
			if err == nil {
				tokens[i] = result.Token
			}
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		require.NotEmpty(t, token)
		email, err := env.svc.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", email)
	}
}
