package application

import (
	"context"
	"fmt"

	"github.com/tillworks/pos/internal/domain"
)

// BeginTOTPEnrollment issues a fresh secret and its provisioning URI for
// the authenticated user. The secret is not persisted until the user proves
// possession of it via ConfirmTOTPEnrollment.
func (s *Service) BeginTOTPEnrollment(ctx context.Context, user domain.User) (TOTPEnrollmentResponse, error) {
	if user.TOTPEnrolled() {
		return TOTPEnrollmentResponse{}, domain.ErrTOTPAlreadyEnrolled
	}
	secret, err := s.totp.GenerateSecret()
	if err != nil {
		return TOTPEnrollmentResponse{}, fmt.Errorf("generate totp secret: %w", err)
	}
	return TOTPEnrollmentResponse{
		Secret:        secret,
		EnrollmentURI: s.totp.EnrollmentURI(secret, user.Email, s.cfg.TOTPIssuer),
	}, nil
}

// ConfirmTOTPEnrollment verifies a live code against the candidate secret
// and persists it. Requiring a valid code first prevents storing a secret
// the authenticator app never received.
func (s *Service) ConfirmTOTPEnrollment(ctx context.Context, user domain.User, secret, code string) error {
	if user.TOTPEnrolled() {
		return domain.ErrTOTPAlreadyEnrolled
	}
	if secret == "" {
		return fmt.Errorf("%w: secret is required", domain.ErrInvalidInput)
	}
	ok, err := s.totp.Verify(secret, code)
	if err != nil {
		return fmt.Errorf("%w: malformed secret", domain.ErrInvalidInput)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	if err := s.credentials.SetTOTPSecret(ctx, user.UserID, secret, s.nowFn()); err != nil {
		return err
	}
	s.recordAudit(ctx, user.BusinessID, &user.UserID, domain.AuditTOTPEnrolled, "", "")
	return nil
}
