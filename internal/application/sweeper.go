package application

import (
	"context"

	"github.com/google/uuid"
)

// sweepAsync launches the maintenance sweep detached from the request that
// triggered it. The sweep has its own error boundary and a bounded context
// so a hung storage call cannot outlive the timeout.
func (s *Service) sweepAsync(businessID uuid.UUID) {
	timeout := s.cfg.SweepTimeout
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.CleanupStaleData(ctx, businessID)
	}()
}

// CleanupStaleData removes expired sessions (global) and audit records
// older than the retention window (scoped to the given business). Both
// deletions are idempotent, so overlapping sweeps from concurrent logins
// need no coordination. Failures are logged and swallowed: this is a
// best-effort housekeeping pass, never a correctness-critical one.
func (s *Service) CleanupStaleData(ctx context.Context, businessID uuid.UUID) {
	now := s.nowFn()

	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("session sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}

	cutoff := now.AddDate(0, -s.cfg.AuditRetention, 0)
	if n, err := s.audit.DeleteOlderThan(ctx, businessID, cutoff); err != nil {
		s.logger.Warn("audit sweep failed", "business_id", businessID, "error", err)
	} else if n > 0 {
		s.logger.Info("stale audit entries removed", "business_id", businessID, "count", n)
	}
}
