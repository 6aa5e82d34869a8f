package application

import (
	"context"
	"errors"

	"github.com/tillworks/pos/internal/domain"
)

// DenyReason tags why a guard check refused the request. The transport
// layer decides whether a denial becomes a redirect or a structured error.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

// Decision is the tagged result of a guard check: either an authenticated
// user or a denial reason, never both.
type Decision struct {
	User   *domain.User
	Reason DenyReason
}

func (d Decision) Allowed() bool { return d.User != nil }

// ResolveSession maps an opaque request token to its user. Absent, unknown
// and expired tokens are indistinguishable to the caller: all return
// (nil, nil). Lookup has no side effects; expired rows are left for the
// sweeper.
func (s *Service) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !session.ExpiresAt.After(s.nowFn()) {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// RequireUser denies when no valid session exists or the resolved account
// has been deactivated. Storage errors collapse to a denial rather than
// leaking through the guard.
func (s *Service) RequireUser(ctx context.Context, token string) Decision {
	user, err := s.ResolveSession(ctx, token)
	if err != nil {
		s.logger.Warn("session resolution failed", "error", err)
		return Decision{Reason: DenyUnauthenticated}
	}
	if user == nil || !user.IsActive {
		return Decision{Reason: DenyUnauthenticated}
	}
	return Decision{User: user}
}

// RequireRole layers exact set-membership on top of RequireUser. There is
// no role hierarchy: a role passes only if it is explicitly listed.
func (s *Service) RequireRole(ctx context.Context, token string, allowed ...domain.Role) Decision {
	decision := s.RequireUser(ctx, token)
	if !decision.Allowed() {
		return decision
	}
	for _, role := range allowed {
		if decision.User.Role == role {
			return decision
		}
	}
	return Decision{Reason: DenyForbidden}
}
