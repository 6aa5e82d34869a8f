package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
	"github.com/tillworks/pos/internal/ports"
)

func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return RegisterResponse{}, err
	}
	if req.BusinessID == uuid.Nil {
		return RegisterResponse{}, fmt.Errorf("%w: business_id is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return RegisterResponse{}, err
	}

	role := s.cfg.DefaultRole
	if req.Role != "" {
		role, err = domain.ParseRole(req.Role)
		if err != nil {
			return RegisterResponse{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, ports.CreateUserParams{
		BusinessID:   req.BusinessID,
		Email:        email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.nowFn(),
	})
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{UserID: user.UserID}, nil
}

// Login verifies credentials and either mints a session directly or, when
// the user has a TOTP secret enrolled, parks the login behind a short-lived
// challenge token. A successful session fires the maintenance sweep.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	lockKey := "login:" + email
	lockState, err := s.lockouts.Get(ctx, lockKey)
	if err == nil && lockState.LockedUntil != nil && lockState.LockedUntil.After(s.nowFn()) {
		return LoginResponse{}, domain.ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		// Deactivated accounts fail the same way as wrong passwords.
		s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLoginFailed, "inactive account", req.IPAddress)
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLoginFailed, "invalid password", req.IPAddress)
		_, _ = s.lockouts.RecordFailure(ctx, lockKey, s.nowFn(), s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	_ = s.lockouts.Clear(ctx, lockKey)

	now := s.nowFn()
	if user.TOTPEnrolled() {
		challengeToken, err := randomHex(24)
		if err != nil {
			return LoginResponse{}, err
		}
		if err := s.challenges.Put(ctx, challengeToken, ports.LoginChallenge{
			UserID:     user.UserID,
			BusinessID: user.BusinessID,
			Email:      user.Email,
			Role:       string(user.Role),
			ExpiresAt:  now.Add(s.cfg.ChallengeTTL),
		}, s.cfg.ChallengeTTL); err != nil {
			return LoginResponse{}, fmt.Errorf("store login challenge: %w", err)
		}
		return LoginResponse{
			RequiresTOTP:   true,
			ChallengeToken: challengeToken,
		}, nil
	}

	return s.openSession(ctx, user, req.IPAddress)
}

// CompleteTOTPLogin finishes a pending two-factor login. A wrong code is an
// expected outcome and maps to invalid credentials; a missing secret on the
// challenged user is a provisioning bug and surfaces as such.
func (s *Service) CompleteTOTPLogin(ctx context.Context, req TOTPLoginRequest) (LoginResponse, error) {
	if req.ChallengeToken == "" {
		return LoginResponse{}, fmt.Errorf("%w: challenge token is required", domain.ErrInvalidInput)
	}

	challenge, err := s.challenges.Get(ctx, req.ChallengeToken)
	if err != nil {
		return LoginResponse{}, err
	}
	if challenge == nil {
		return LoginResponse{}, domain.ErrUnauthorized
	}
	if challenge.ExpiresAt.Before(s.nowFn()) {
		_ = s.challenges.Delete(ctx, req.ChallengeToken)
		return LoginResponse{}, domain.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, challenge.UserID)
	if err != nil {
		return LoginResponse{}, domain.ErrUnauthorized
	}
	if !user.TOTPEnrolled() {
		return LoginResponse{}, domain.ErrTOTPNotConfigured
	}

	ok, err := s.totp.Verify(user.TOTPSecret, req.Code)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("verify totp: %w", err)
	}
	if !ok {
		s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLoginFailed, "invalid totp code", req.IPAddress)
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	_ = s.challenges.Delete(ctx, req.ChallengeToken)
	return s.openSession(ctx, user, req.IPAddress)
}

// Logout removes the session row. Unknown or already-deleted tokens are a
// no-op so logout is idempotent from the client's perspective.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return err
	}
	if user, userErr := s.users.GetByID(ctx, session.UserID); userErr == nil {
		s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLogout, "", "")
	}
	return nil
}

// DeactivateUser disables an account without deleting it. Live sessions of
// the target are removed so the flag takes effect immediately.
func (s *Service) DeactivateUser(ctx context.Context, actor domain.User, userID uuid.UUID) error {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if target.BusinessID != actor.BusinessID {
		return domain.ErrNotFound
	}
	if err := s.users.Deactivate(ctx, userID, s.nowFn()); err != nil {
		return err
	}
	s.recordAudit(ctx, target.BusinessID, &target.UserID, domain.AuditUserDeactivated, "by "+actor.Email, "")
	return nil
}

// ChangePassword rotates the caller's own credential. The current password
// must verify first, so a hijacked session alone cannot take the account.
func (s *Service) ChangePassword(ctx context.Context, user domain.User, current, next string) error {
	if err := s.hasher.Compare(user.PasswordHash, current); err != nil {
		s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLoginFailed, "password change with wrong current password", "")
		return domain.ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.credentials.UpdatePassword(ctx, user.UserID, passwordHash, s.nowFn()); err != nil {
		return err
	}
	s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditPasswordChanged, "", "")
	return nil
}

// ListAuditEntries returns recent audit records for the caller's business.
func (s *Service) ListAuditEntries(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.audit.ListByBusiness(ctx, businessID, limit, offset)
}

func (s *Service) openSession(ctx context.Context, user domain.User, ip string) (LoginResponse, error) {
	now := s.nowFn()
	token, err := randomHex(32)
	if err != nil {
		return LoginResponse{}, err
	}
	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		Token:     token,
		UserID:    user.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("create session: %w", err)
	}

	s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditLoginSuccess, "", ip)
	s.sweepAsync(user.BusinessID)

	return LoginResponse{
		SessionToken: session.Token,
		UserID:       user.UserID,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, businessID uuid.UUID, userID *uuid.UUID, action, detail, ip string) {
	if err := s.audit.Insert(ctx, domain.AuditEntry{
		BusinessID: businessID,
		UserID:     userID,
		Action:     action,
		Detail:     detail,
		IPAddress:  ip,
		CreatedAt:  s.nowFn(),
	}); err != nil {
		s.logger.Warn("audit insert failed", "action", action, "error", err)
	}
}
