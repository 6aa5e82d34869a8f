package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFileValues(t *testing.T) {
	path := writeConfigFile(t, `
service:
  id: pos-test
  http_port: 9090
dependencies:
  postgres_url: postgres://localhost:5432/pos
  redis_url: redis://localhost:6379/0
auth:
  totp_issuer: Test Issuer
  secure_cookies: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceID != "pos-test" || cfg.HTTPPort != 9090 {
		t.Fatalf("service section not applied: %+v", cfg)
	}
	if cfg.TOTPIssuer != "Test Issuer" {
		t.Fatalf("issuer not applied: %q", cfg.TOTPIssuer)
	}
	if cfg.SecureCookies {
		t.Fatalf("secure_cookies=false should override the default")
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.AuditRetentionMonths != 6 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
dependencies:
  postgres_url: postgres://file-host:5432/pos
  redis_url: redis://file-host:6379/0
`)
	t.Setenv("DB_URL", "postgres://env-host:5432/pos")
	t.Setenv("SESSION_EXPIRY_HOURS", "24")
	t.Setenv("FAILED_LOGIN_THRESHOLD", "3")
	t.Setenv("SECURE_COOKIES", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env-host:5432/pos" {
		t.Fatalf("env must win over file: %q", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://file-host:6379/0" {
		t.Fatalf("file value should survive without env: %q", cfg.RedisURL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("session ttl override missed: %v", cfg.SessionTTL)
	}
	if cfg.FailedThreshold != 3 {
		t.Fatalf("threshold override missed: %d", cfg.FailedThreshold)
	}
	if cfg.SecureCookies {
		t.Fatalf("secure cookies override missed")
	}
}

func TestLoadConfigRequiresBackends(t *testing.T) {
	path := writeConfigFile(t, `
service:
  id: pos-test
`)
	t.Setenv("DB_URL", "")
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_URL", "")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected failure without database and redis URLs")
	}
}
