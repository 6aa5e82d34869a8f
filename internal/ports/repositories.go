package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
)

// CreateUserParams captures the inputs for user creation at registration.
type CreateUserParams struct {
	BusinessID   uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for staff identities.
// Deactivate exists instead of a delete because accounts are retained for
// audit history.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	Deactivate(ctx context.Context, userID uuid.UUID, deactivatedAt time.Time) error
}

// SessionCreateParams captures a new opaque-token session record.
type SessionCreateParams struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionRepository manages persistent session lifecycle. Expiry is
// evaluated by callers at read time; DeleteExpired is the sweeper's bulk
// removal of rows already past their deadline.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByToken(ctx context.Context, token string) (domain.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository stores authentication outcomes per business and enforces
// retention via DeleteOlderThan, which must never cross business boundaries.
type AuditRepository interface {
	Insert(ctx context.Context, entry domain.AuditEntry) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error)
	DeleteOlderThan(ctx context.Context, businessID uuid.UUID, cutoff time.Time) (int64, error)
}

// CredentialRepository manages mutable credential state on the user row.
type CredentialRepository interface {
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string, updatedAt time.Time) error
}
