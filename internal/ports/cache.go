package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LockoutState is the current lockout envelope for a login key.
// It is cache-backed to avoid hot writes on every failed login.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// LockoutStore handles short-lived brute-force protection state.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

// LoginChallenge is a short-lived envelope for a login that passed the
// password check but still owes a TOTP code. It carries the auth context so
// completion can avoid a second user lookup.
type LoginChallenge struct {
	UserID     uuid.UUID `json:"user_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LoginChallengeStore persists pending two-factor logins with a TTL.
type LoginChallengeStore interface {
	Put(ctx context.Context, token string, challenge LoginChallenge, ttl time.Duration) error
	Get(ctx context.Context, token string) (*LoginChallenge, error)
	Delete(ctx context.Context, token string) error
}
