package ports

import (
	"context"
	"time"

	"github.com/sattisvar/live-bootcamp-project/core"
)

// UserStore owns account records keyed by normalized email
type UserStore interface {
	// Add inserts a new user atomically.
	// Returns core.ErrUserAlreadyExists if the email is taken.
	Add(ctx context.Context, user core.User) error

	// Get returns the user for the given email.
	// Returns core.ErrUserNotFound if absent.
	Get(ctx context.Context, email string) (core.User, error)

	// Validate checks the supplied password against the stored hash and
	// returns the account on success.
	// Returns core.ErrUserNotFound or core.ErrInvalidCredentials. When the
	// account is missing, implementations still burn a hash comparison so
	// response latency does not reveal whether the email is registered.
	// Implementations must not hold their lock across the hash comparison.
	Validate(ctx context.Context, email, password string) (core.User, error)
}

// TwoFACodeStore owns at most one live second-factor code per account
type TwoFACodeStore interface {
	// Issue generates a fresh code for the account, replacing any prior
	// code, and returns it for out-of-band delivery.
	Issue(ctx context.Context, email string) (string, error)

	// Verify checks a submitted code. On a match the code is consumed and
	// cannot be used again. A mismatch leaves the pending code intact.
	// Returns core.ErrNoCodePending, core.ErrCodeExpired or
	// core.ErrCodeMismatch.
	Verify(ctx context.Context, email, code string) error
}

// BannedTokenStore is the revocation set of token IDs invalidated before
// their natural expiry. Entries may be dropped once the ttl passes, since
// an expired token fails verification regardless.
type BannedTokenStore interface {
	// Ban adds a token ID to the revocation set. Banning twice is not an
	// error.
	Ban(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsBanned reports whether a token ID is in the revocation set.
	IsBanned(ctx context.Context, tokenID string) (bool, error)
}
