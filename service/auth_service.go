// Package service contains the authentication orchestrator. It owns no
// state of its own; every mutation happens in the stores it composes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sattisvar/live-bootcamp-project/core"
	"github.com/sattisvar/live-bootcamp-project/ports"
)

// DefaultSessionTTL is the default lifetime of an issued session token.
const DefaultSessionTTL = 15 * time.Minute

// expiredBanTTL keeps revocation records for already-expired tokens around
// long enough to cover clock skew between instances.
const expiredBanTTL = time.Hour

// CodeSender delivers an issued two-factor code to the user out-of-band,
// e.g. by email. Delivery failures fail the login attempt so the user is
// never left waiting for a code that went nowhere.
type CodeSender func(ctx context.Context, email, code string) error

// LoginResult is the outcome of a successful password check
type LoginResult struct {
	// TwoFARequired is true when the account needs a second factor; no
	// token is issued until the code is verified.
	TwoFARequired bool

	// Token is the session token, set only when TwoFARequired is false.
	Token string
}

// AuthService drives the authentication state machine:
// unauthenticated -> credentials verified -> (authenticated | awaiting
// second factor) -> authenticated.
type AuthService struct {
	users     ports.UserStore
	codes     ports.TwoFACodeStore
	banned    ports.BannedTokenStore
	hasher    ports.PasswordHasher
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	logger    *slog.Logger

	sendCode   CodeSender
	sessionTTL time.Duration
}

// Option configures an AuthService
type Option func(*AuthService)

// WithSessionTTL overrides the session token lifetime
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithCodeSender sets the delivery hook for issued two-factor codes
func WithCodeSender(sender CodeSender) Option {
	return func(s *AuthService) {
		s.sendCode = sender
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users ports.UserStore,
	codes ports.TwoFACodeStore,
	banned ports.BannedTokenStore,
	hasher ports.PasswordHasher,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &AuthService{
		users:      users,
		codes:      codes,
		banned:     banned,
		hasher:     hasher,
		tokenizer:  tokenizer,
		eventPub:   eventPub,
		logger:     logger,
		sessionTTL: DefaultSessionTTL,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Signup registers a new account. The password is hashed before the store
// is touched, so an abandoned request mutates nothing.
func (s *AuthService) Signup(ctx context.Context, email, password string, requiresTwoFA bool) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := core.User{
		Email:         core.NormalizeEmail(email),
		PasswordHash:  hash,
		RequiresTwoFA: requiresTwoFA,
		CreatedAt:     time.Now(),
	}

	if err := s.users.Add(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserAlreadyExists) {
			return core.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to add user: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishUserRegistered(ctx, user.Email); err != nil {
			// The account exists either way; the event is advisory.
			s.logger.Warn("failed to publish registration event", slog.String("error", err.Error()))
		}
	}

	return nil
}

// Login verifies credentials and either issues a session token or, for
// accounts requiring a second factor, issues a two-factor code and returns
// a pending result. Missing accounts and wrong passwords are deliberately
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = core.NormalizeEmail(email)

	user, err := s.users.Validate(ctx, email, password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) || errors.Is(err, core.ErrUserNotFound) {
			s.logger.Debug("login with bad credentials", slog.String("email", email))
			return LoginResult{}, core.ErrAuthenticationFailed
		}
		return LoginResult{}, fmt.Errorf("failed to validate credentials: %w", err)
	}

	if user.RequiresTwoFA {
		code, err := s.codes.Issue(ctx, email)
		if err != nil {
			return LoginResult{}, fmt.Errorf("failed to issue two-factor code: %w", err)
		}

		if s.sendCode != nil {
			if err := s.sendCode(ctx, email, code); err != nil {
				return LoginResult{}, fmt.Errorf("failed to deliver two-factor code: %w", err)
			}
		}

		return LoginResult{TwoFARequired: true}, nil
	}

	token, err := s.issueSession(email)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token}, nil
}

// VerifyTwoFA consumes a pending two-factor code and completes the login.
// All code failures collapse to a single external error; the distinction
// stays in the logs.
func (s *AuthService) VerifyTwoFA(ctx context.Context, email, code string) (string, error) {
	email = core.NormalizeEmail(email)

	if err := s.codes.Verify(ctx, email, code); err != nil {
		switch {
		case errors.Is(err, core.ErrNoCodePending),
			errors.Is(err, core.ErrCodeExpired),
			errors.Is(err, core.ErrCodeMismatch):
			s.logger.Debug("two-factor verification failed",
				slog.String("email", email), slog.String("reason", err.Error()))
			return "", core.ErrInvalidOrExpiredCode
		default:
			return "", fmt.Errorf("failed to verify two-factor code: %w", err)
		}
	}

	return s.issueSession(email)
}

// VerifyToken checks a session token and returns the account it belongs
// to. Checks run signature first, then expiry, then the revocation set.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	session, err := s.tokenizer.Parse(tokenString)
	if err != nil {
		return "", err
	}

	banned, err := s.banned.IsBanned(ctx, session.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check revocation: %w", err)
	}
	if banned {
		return "", core.ErrTokenRevoked
	}

	return session.Email, nil
}

// Logout revokes a session token. Expired tokens are still banned, with a
// floor TTL, so they cannot resurface on instances with skewed clocks.
// Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	session, err := s.tokenizer.Parse(tokenString)
	if err != nil && !errors.Is(err, core.ErrTokenExpired) {
		return err
	}
	if session == nil {
		return core.ErrMalformedToken
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = expiredBanTTL
	}

	if err := s.banned.Ban(ctx, session.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session.Email, session.ID); err != nil {
			// The token is already in the revocation set, which is the part
			// that matters.
			s.logger.Warn("failed to publish logout event", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (s *AuthService) issueSession(email string) (string, error) {
	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.Issue(session)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	return token, nil
}
