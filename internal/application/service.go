package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/tillworks/pos/internal/domain"
	"github.com/tillworks/pos/internal/ports"
)

type Service struct {
	cfg         Config
	users       ports.UserRepository
	sessions    ports.SessionRepository
	audit       ports.AuditRepository
	credentials ports.CredentialRepository
	lockouts    ports.LockoutStore
	challenges  ports.LoginChallengeStore
	hasher      ports.PasswordHasher
	totp        ports.TOTPEngine
	logger      *slog.Logger
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Users       ports.UserRepository
	Sessions    ports.SessionRepository
	Audit       ports.AuditRepository
	Credentials ports.CredentialRepository
	Lockouts    ports.LockoutStore
	Challenges  ports.LoginChallengeStore
	Hasher      ports.PasswordHasher
	TOTP        ports.TOTPEngine
	Logger      *slog.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:         deps.Config,
		users:       deps.Users,
		sessions:    deps.Sessions,
		audit:       deps.Audit,
		credentials: deps.Credentials,
		lockouts:    deps.Lockouts,
		challenges:  deps.Challenges,
		hasher:      deps.Hasher,
		totp:        deps.TOTP,
		logger:      logger,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// randomHex fails rather than degrade: a token minted from a partial read
// would be predictable.
func randomHex(bytesLen int) (string, error) {
	raw := make([]byte, bytesLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
