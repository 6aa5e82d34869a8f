package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/domain"
	"github.com/tillworks/pos/internal/ports"
)

func TestRegisterLoginLogout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	registerRes, err := f.service.Register(ctx, RegisterRequest{
		BusinessID: f.businessID,
		Email:      "user@example.com",
		Name:       "Test User",
		Password:   "SecurePass123",
		Role:       "MANAGER",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registerRes.UserID == uuid.Nil {
		t.Fatalf("register returned empty user id")
	}

	loginRes, err := f.service.Login(ctx, LoginRequest{
		Email:     "user@example.com",
		Password:  "SecurePass123",
		IPAddress: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginRes.RequiresTOTP {
		t.Fatalf("did not expect totp challenge")
	}
	if loginRes.SessionToken == "" {
		t.Fatalf("login session token should not be empty")
	}

	user, err := f.service.ResolveSession(ctx, loginRes.SessionToken)
	if err != nil {
		t.Fatalf("resolve session failed: %v", err)
	}
	if user == nil || user.UserID != registerRes.UserID {
		t.Fatalf("resolved wrong user: %+v", user)
	}

	if err := f.service.Logout(ctx, loginRes.SessionToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	user, err = f.service.ResolveSession(ctx, loginRes.SessionToken)
	if err != nil {
		t.Fatalf("resolve after logout failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expected absent session after logout")
	}
}

func TestResolveSessionUnknownToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	user, err := f.service.ResolveSession(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user != nil {
		t.Fatalf("unknown token should resolve to absent")
	}
}

func TestResolveSessionBlankToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	user, err := f.service.ResolveSession(context.Background(), "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user != nil {
		t.Fatalf("blank token should resolve to absent")
	}
}

func TestResolveSessionExpiredRowStillPresent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	u := f.seedUser("expired@example.com", domain.RoleCashier, "")
	session, err := f.sessions.Create(ctx, ports.SessionCreateParams{
		Token:     "expired-token",
		UserID:    u.UserID,
		CreatedAt: f.now.Add(-2 * time.Hour),
		ExpiresAt: f.now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	user, err := f.service.ResolveSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user != nil {
		t.Fatalf("expired session should resolve to absent")
	}
	// The row is untouched until the sweeper removes it.
	if _, err := f.sessions.GetByToken(ctx, session.Token); err != nil {
		t.Fatalf("expired row should still exist, got %v", err)
	}
}

func TestResolveSessionExactExpiryIsAbsent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	u := f.seedUser("edge@example.com", domain.RoleCashier, "")
	_, err := f.sessions.Create(ctx, ports.SessionCreateParams{
		Token:     "edge-token",
		UserID:    u.UserID,
		CreatedAt: f.now.Add(-time.Hour),
		ExpiresAt: f.now, // validity requires strictly-future expiry
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	user, err := f.service.ResolveSession(ctx, "edge-token")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user != nil {
		t.Fatalf("session expiring exactly now should be absent")
	}
}

func TestRequireRoleExactMembership(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	cashier := f.seedUser("cashier@example.com", domain.RoleCashier, "")
	owner := f.seedUser("owner@example.com", domain.RoleOwner, "")
	cashierToken := f.seedSession(cashier)
	ownerToken := f.seedSession(owner)

	decision := f.service.RequireRole(ctx, cashierToken, domain.RoleManager, domain.RoleOwner)
	if decision.Allowed() {
		t.Fatalf("cashier must not pass a manager/owner guard")
	}
	if decision.Reason != DenyForbidden {
		t.Fatalf("expected forbidden, got %q", decision.Reason)
	}

	decision = f.service.RequireRole(ctx, ownerToken, domain.RoleManager, domain.RoleOwner)
	if !decision.Allowed() {
		t.Fatalf("owner should pass when explicitly listed")
	}

	// No hierarchy: OWNER is not implicitly granted a MANAGER-only route.
	decision = f.service.RequireRole(ctx, ownerToken, domain.RoleManager)
	if decision.Allowed() {
		t.Fatalf("owner must not pass a manager-only guard")
	}
	if decision.Reason != DenyForbidden {
		t.Fatalf("expected forbidden, got %q", decision.Reason)
	}
}

func TestRequireUserDeniesMissingAndInactive(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	decision := f.service.RequireUser(ctx, "")
	if decision.Allowed() || decision.Reason != DenyUnauthenticated {
		t.Fatalf("missing token should be unauthenticated, got %+v", decision)
	}

	u := f.seedUser("inactive@example.com", domain.RoleManager, "")
	token := f.seedSession(u)
	if err := f.users.Deactivate(ctx, u.UserID, f.now); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	decision = f.service.RequireUser(ctx, token)
	if decision.Allowed() || decision.Reason != DenyUnauthenticated {
		t.Fatalf("inactive user should be unauthenticated, got %+v", decision)
	}
}

func TestLoginWithTOTPChallengeAndComplete(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.totp.validCode = "123456"
	f.seedUser("mfa@example.com", domain.RoleManager, "ORSXG5A7ORSXG5A7ORSXG5A7ORSXG5A7")

	loginRes, err := f.service.Login(ctx, LoginRequest{
		Email:     "mfa@example.com",
		Password:  "SecurePass123",
		IPAddress: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !loginRes.RequiresTOTP || loginRes.ChallengeToken == "" {
		t.Fatalf("expected pending totp challenge")
	}
	if loginRes.SessionToken != "" {
		t.Fatalf("no session may exist before the code is verified")
	}

	_, err = f.service.CompleteTOTPLogin(ctx, TOTPLoginRequest{
		ChallengeToken: loginRes.ChallengeToken,
		Code:           "999999",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong code should be invalid credentials, got %v", err)
	}

	completeRes, err := f.service.CompleteTOTPLogin(ctx, TOTPLoginRequest{
		ChallengeToken: loginRes.ChallengeToken,
		Code:           "123456",
	})
	if err != nil {
		t.Fatalf("complete totp login failed: %v", err)
	}
	if completeRes.SessionToken == "" {
		t.Fatalf("expected session after totp verification")
	}

	// The challenge is single-use.
	if _, err := f.service.CompleteTOTPLogin(ctx, TOTPLoginRequest{
		ChallengeToken: loginRes.ChallengeToken,
		Code:           "123456",
	}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("consumed challenge should be unauthorized, got %v", err)
	}
}

func TestLoginFailuresLockAccount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.seedUser("locked@example.com", domain.RoleCashier, "")

	for i := 0; i < f.service.cfg.FailedLoginThreshold; i++ {
		if _, err := f.service.Login(ctx, LoginRequest{
			Email:    "locked@example.com",
			Password: "WrongPass999",
		}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i, err)
		}
	}

	if _, err := f.service.Login(ctx, LoginRequest{
		Email:    "locked@example.com",
		Password: "SecurePass123",
	}); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected lockout even with correct password, got %v", err)
	}
}

func TestLoginDoesNotRevealUnknownEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.seedUser("real@example.com", domain.RoleCashier, "")

	_, unknownErr := f.service.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "SecurePass123"})
	_, wrongPassErr := f.service.Login(ctx, LoginRequest{Email: "real@example.com", Password: "WrongPass999"})
	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongPassErr, domain.ErrInvalidCredentials) {
		t.Fatalf("both failures must collapse to the same error, got %v / %v", unknownErr, wrongPassErr)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	user := f.seedUser("rotate@example.com", domain.RoleCashier, "")

	if err := f.service.ChangePassword(ctx, user, "WrongPass999", "FreshSecret456"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong current password must be rejected, got %v", err)
	}
	if err := f.service.ChangePassword(ctx, user, "SecurePass123", "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("weak new password must be rejected, got %v", err)
	}
	stored, err := f.users.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash != user.PasswordHash {
		t.Fatalf("hash must not change on a rejected rotation")
	}

	if err := f.service.ChangePassword(ctx, user, "SecurePass123", "FreshSecret456"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	stored, err = f.users.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash != "hashed:FreshSecret456" {
		t.Fatalf("new hash not persisted: %q", stored.PasswordHash)
	}

	if _, err := f.service.Login(ctx, LoginRequest{Email: "rotate@example.com", Password: "FreshSecret456"}); err != nil {
		t.Fatalf("login with rotated password failed: %v", err)
	}
}

func TestTOTPEnrollmentFlow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	f.totp.validCode = "654321"
	user := f.seedUser("enroll@example.com", domain.RoleOwner, "")

	enrollment, err := f.service.BeginTOTPEnrollment(ctx, user)
	if err != nil {
		t.Fatalf("begin enrollment failed: %v", err)
	}
	if enrollment.Secret == "" || enrollment.EnrollmentURI == "" {
		t.Fatalf("expected secret and uri, got %+v", enrollment)
	}

	if err := f.service.ConfirmTOTPEnrollment(ctx, user, enrollment.Secret, "000000"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong code must not persist the secret, got %v", err)
	}
	stored, err := f.users.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.TOTPEnrolled() {
		t.Fatalf("secret persisted despite failed confirmation")
	}

	if err := f.service.ConfirmTOTPEnrollment(ctx, user, enrollment.Secret, "654321"); err != nil {
		t.Fatalf("confirm enrollment failed: %v", err)
	}
	stored, err = f.users.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.TOTPSecret != enrollment.Secret {
		t.Fatalf("stored secret mismatch")
	}

	if _, err := f.service.BeginTOTPEnrollment(ctx, stored); !errors.Is(err, domain.ErrTOTPAlreadyEnrolled) {
		t.Fatalf("re-enrollment should be rejected, got %v", err)
	}
}

func TestCleanupStaleDataIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	otherBusiness := uuid.New()
	u := f.seedUser("sweep@example.com", domain.RoleCashier, "")

	mustCreateSession := func(token string, expiresAt time.Time) {
		t.Helper()
		if _, err := f.sessions.Create(ctx, ports.SessionCreateParams{
			Token:     token,
			UserID:    u.UserID,
			CreatedAt: f.now.Add(-time.Hour),
			ExpiresAt: expiresAt,
		}); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	mustCreateSession("live", f.now.Add(time.Hour))
	mustCreateSession("dead-1", f.now.Add(-time.Minute))
	mustCreateSession("dead-2", f.now.Add(-24*time.Hour))

	seedAudit := func(businessID uuid.UUID, age time.Duration) {
		t.Helper()
		if err := f.audit.Insert(ctx, domain.AuditEntry{
			BusinessID: businessID,
			Action:     domain.AuditLoginSuccess,
			CreatedAt:  f.now.Add(-age),
		}); err != nil {
			t.Fatalf("seed audit: %v", err)
		}
	}
	seedAudit(f.businessID, 30*24*time.Hour)       // recent, kept
	seedAudit(f.businessID, 7*31*24*time.Hour)     // older than 6 months, swept
	seedAudit(otherBusiness, 7*31*24*time.Hour)    // other business, never touched

	f.service.CleanupStaleData(ctx, f.businessID)
	f.service.CleanupStaleData(ctx, f.businessID) // second pass must be a no-op

	if _, err := f.sessions.GetByToken(ctx, "live"); err != nil {
		t.Fatalf("live session must survive sweep: %v", err)
	}
	for _, token := range []string{"dead-1", "dead-2"} {
		if _, err := f.sessions.GetByToken(ctx, token); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected %s swept, got %v", token, err)
		}
	}

	own, err := f.audit.ListByBusiness(ctx, f.businessID, 100, 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected one surviving audit row, got %d", len(own))
	}
	other, err := f.audit.ListByBusiness(ctx, otherBusiness, 100, 0)
	if err != nil {
		t.Fatalf("list other audit: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("sweep must never cross businesses, got %d rows", len(other))
	}
}

func TestCleanupStaleDataSwallowsFailures(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.sessions.failDelete = true
	f.audit.failDelete = true

	// Must not panic or propagate anything.
	f.service.CleanupStaleData(context.Background(), f.businessID)
}

func TestDeactivateUserScopedToBusiness(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	owner := f.seedUser("boss@example.com", domain.RoleOwner, "")
	staff := f.seedUser("staff@example.com", domain.RoleCashier, "")

	foreignOwner := owner
	foreignOwner.BusinessID = uuid.New()
	if err := f.service.DeactivateUser(ctx, foreignOwner, staff.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-business deactivation must look like not-found, got %v", err)
	}

	if err := f.service.DeactivateUser(ctx, owner, staff.UserID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	stored, err := f.users.GetByID(ctx, staff.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("user should be inactive")
	}
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	a, err := randomHex(32)
	if err != nil {
		t.Fatalf("random hex: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars from 32 bytes, got %d", len(a))
	}
	b, err := randomHex(32)
	if err != nil {
		t.Fatalf("random hex: %v", err)
	}
	if a == b {
		t.Fatalf("two tokens collided")
	}
}

// --- fixture -------------------------------------------------------------

type fixture struct {
	service    *Service
	users      *fakeUsers
	sessions   *fakeSessions
	audit      *fakeAudit
	lockouts   *fakeLockouts
	challenges *fakeChallenges
	totp       *fakeTOTP
	businessID uuid.UUID
	now        time.Time
}

func newFixture() *fixture {
	users := &fakeUsers{byID: map[uuid.UUID]domain.User{}, byEmail: map[string]domain.User{}}
	sessions := &fakeSessions{byToken: map[string]domain.Session{}}
	audit := &fakeAudit{}
	lockouts := &fakeLockouts{state: map[string]ports.LockoutState{}}
	challenges := &fakeChallenges{byToken: map[string]ports.LoginChallenge{}}
	engine := &fakeTOTP{}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	service := NewService(Dependencies{
		Config: Config{
			DefaultRole:          domain.RoleCashier,
			SessionTTL:           12 * time.Hour,
			ChallengeTTL:         5 * time.Minute,
			FailedLoginThreshold: 5,
			LockoutDuration:      30 * time.Minute,
			AuditRetention:       6,
			SweepTimeout:         time.Second,
			TOTPIssuer:           "Tillworks POS",
		},
		Users:       users,
		Sessions:    sessions,
		Audit:       audit,
		Credentials: &fakeCredentials{users: users},
		Lockouts:    lockouts,
		Challenges:  challenges,
		Hasher:      fakeHasher{},
		TOTP:        engine,
		Logger:      slog.Default(),
	})
	service.nowFn = func() time.Time { return now }

	return &fixture{
		service:    service,
		users:      users,
		sessions:   sessions,
		audit:      audit,
		lockouts:   lockouts,
		challenges: challenges,
		totp:       engine,
		businessID: uuid.New(),
		now:        now,
	}
}

func (f *fixture) seedUser(email string, role domain.Role, totpSecret string) domain.User {
	user := domain.User{
		UserID:       uuid.New(),
		BusinessID:   f.businessID,
		Email:        email,
		Name:         "Seeded",
		PasswordHash: "hashed:SecurePass123",
		Role:         role,
		TOTPSecret:   totpSecret,
		IsActive:     true,
		CreatedAt:    f.now,
		UpdatedAt:    f.now,
	}
	f.users.put(user)
	return user
}

func (f *fixture) seedSession(user domain.User) string {
	token := "token-" + user.Email
	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	f.sessions.byToken[token] = domain.Session{
		Token:     token,
		UserID:    user.UserID,
		CreatedAt: f.now,
		ExpiresAt: f.now.Add(time.Hour),
	}
	return token
}

// --- fakes ---------------------------------------------------------------

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeTOTP struct {
	validCode string
}

func (e *fakeTOTP) GenerateSecret() (string, error) {
	return "ORSXG5A7ORSXG5A7ORSXG5A7ORSXG5A7", nil
}

func (e *fakeTOTP) EnrollmentURI(secret, account, issuer string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s", issuer, account, secret)
}

func (e *fakeTOTP) Verify(secret, code string) (bool, error) {
	if secret == "" {
		return false, errors.New("malformed secret")
	}
	return code == e.validCode, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]domain.User
}

func (f *fakeUsers) put(user domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[user.UserID] = user
	f.byEmail[user.Email] = user
}

func (f *fakeUsers) Create(_ context.Context, params ports.CreateUserParams) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[params.Email]; ok {
		return domain.User{}, domain.ErrConflict
	}
	user := domain.User{
		UserID:       uuid.New(),
		BusinessID:   params.BusinessID,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	f.byID[user.UserID] = user
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) Deactivate(_ context.Context, userID uuid.UUID, deactivatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.IsActive = false
	user.UpdatedAt = deactivatedAt
	f.byID[userID] = user
	f.byEmail[user.Email] = user
	return nil
}

type fakeSessions struct {
	mu         sync.Mutex
	byToken    map[string]domain.Session
	failDelete bool
}

func (f *fakeSessions) Create(_ context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := domain.Session{
		Token:     params.Token,
		UserID:    params.UserID,
		CreatedAt: params.CreatedAt,
		ExpiresAt: params.ExpiresAt,
	}
	f.byToken[session.Token] = session
	return session, nil
}

func (f *fakeSessions) GetByToken(_ context.Context, token string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.byToken[token]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessions) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return 0, errors.New("storage down")
	}
	var n int64
	for token, session := range f.byToken {
		if session.ExpiresAt.Before(before) {
			delete(f.byToken, token)
			n++
		}
	}
	return n, nil
}

type fakeAudit struct {
	mu         sync.Mutex
	entries    []domain.AuditEntry
	failDelete bool
}

func (f *fakeAudit) Insert(_ context.Context, entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) ListByBusiness(_ context.Context, businessID uuid.UUID, limit, offset int) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditEntry
	for _, entry := range f.entries {
		if entry.BusinessID == businessID {
			out = append(out, entry)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAudit) DeleteOlderThan(_ context.Context, businessID uuid.UUID, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return 0, errors.New("storage down")
	}
	kept := f.entries[:0]
	var n int64
	for _, entry := range f.entries {
		if entry.BusinessID == businessID && entry.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, entry)
	}
	f.entries = kept
	return n, nil
}

type fakeCredentials struct {
	users *fakeUsers
}

func (f *fakeCredentials) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	user, ok := f.users.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	f.users.byID[userID] = user
	f.users.byEmail[user.Email] = user
	return nil
}

func (f *fakeCredentials) SetTOTPSecret(_ context.Context, userID uuid.UUID, secret string, updatedAt time.Time) error {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	user, ok := f.users.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.TOTPSecret = secret
	user.UpdatedAt = updatedAt
	f.users.byID[userID] = user
	f.users.byEmail[user.Email] = user
	return nil
}

type fakeLockouts struct {
	mu    sync.Mutex
	state map[string]ports.LockoutState
}

func (f *fakeLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[key], nil
}

func (f *fakeLockouts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state[key]
	st.FailedCount++
	if st.FailedCount >= threshold {
		lockUntil := now.Add(lockoutWindow)
		st.LockedUntil = &lockUntil
	}
	f.state[key] = st
	return st, nil
}

func (f *fakeLockouts) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, key)
	return nil
}

type fakeChallenges struct {
	mu      sync.Mutex
	byToken map[string]ports.LoginChallenge
}

func (f *fakeChallenges) Put(_ context.Context, token string, challenge ports.LoginChallenge, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byToken[token] = challenge
	return nil
}

func (f *fakeChallenges) Get(_ context.Context, token string) (*ports.LoginChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	challenge, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	cp := challenge
	return &cp, nil
}

func (f *fakeChallenges) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}
