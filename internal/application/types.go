package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
)

type Config struct {
	DefaultRole          domain.Role
	SessionTTL           time.Duration
	ChallengeTTL         time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	AuditRetention       int // calendar months
	SweepTimeout         time.Duration
	TOTPIssuer           string
}

type RegisterRequest struct {
	BusinessID uuid.UUID `json:"business_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Password   string    `json:"password"`
	Role       string    `json:"role"`
}

type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
}

type LoginResponse struct {
	RequiresTOTP   bool      `json:"requires_totp"`
	ChallengeToken string    `json:"challenge_token,omitempty"`
	SessionToken   string    `json:"-"`
	UserID         uuid.UUID `json:"user_id,omitempty"`
	ExpiresAt      time.Time `json:"expires_at,omitempty"`
}

type TOTPLoginRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
	IPAddress      string `json:"ip_address"`
}

type TOTPEnrollmentResponse struct {
	Secret        string `json:"secret"`
	EnrollmentURI string `json:"enrollment_uri"`
}
