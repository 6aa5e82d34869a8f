package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the authentication flows.
const (
	AuditLoginSuccess    = "LOGIN_SUCCESS"
	AuditLoginFailed     = "LOGIN_FAILED"
	AuditLogout          = "LOGOUT"
	AuditTOTPEnrolled    = "TOTP_ENROLLED"
	AuditPasswordChanged = "PASSWORD_CHANGED"
	AuditUserDeactivated = "USER_DEACTIVATED"
)

// AuditEntry records an authentication outcome scoped to a business.
// Entries older than the retention window are eligible for deletion by
// the maintenance sweeper, strictly within their own business.
type AuditEntry struct {
	ID         int64
	BusinessID uuid.UUID
	UserID     *uuid.UUID
	Action     string
	Detail     string
	IPAddress  string
	CreatedAt  time.Time
}
