package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of staff roles a POS user can hold.
// Authorization treats roles as an unordered allow-list; OWNER is not
// implicitly granted MANAGER-only operations.
type Role string

const (
	RoleCashier Role = "CASHIER"
	RoleManager Role = "MANAGER"
	RoleOwner   Role = "OWNER"
)

// ParseRole validates a raw role string against the closed set. Input is
// case-insensitive and surrounding whitespace is ignored.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleCashier, RoleManager, RoleOwner:
		return role, nil
	default:
		return "", ErrInvalidInput
	}
}

// User is the authentication identity for a business staff member.
// Accounts are never hard-deleted; deactivation flips IsActive.
type User struct {
	UserID       uuid.UUID
	BusinessID   uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	TOTPSecret   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TOTPEnrolled reports whether the user has a confirmed second factor.
func (u User) TOTPEnrolled() bool {
	return u.TOTPSecret != ""
}

// Session is a server-side login record referenced by an opaque token
// held by the client. A session is valid iff the row exists and
// ExpiresAt is strictly in the future.
type Session struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}
