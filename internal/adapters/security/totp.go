package security

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpSecretBytes = 20 // 160 bits of entropy before encoding
	totpPeriod      = 30
	totpDigits      = otp.DigitsSix
)

// TOTPEngine generates secrets and verifies 6-digit codes on a 30-second
// window with one step of clock-skew tolerance in either direction.
type TOTPEngine struct {
	nowFn func() time.Time
}

func NewTOTPEngine() *TOTPEngine {
	return &TOTPEngine{nowFn: func() time.Time { return time.Now().UTC() }}
}

// NewTOTPEngineAt pins the engine clock; used by tests to exercise the
// skew window deterministically.
func NewTOTPEngineAt(nowFn func() time.Time) *TOTPEngine {
	return &TOTPEngine{nowFn: nowFn}
}

// GenerateSecret returns a fresh base32-encoded 20-byte key. 20 bytes
// encode to 32 characters with no padding, which keeps the secret safe for
// manual entry and QR embedding.
func (e *TOTPEngine) GenerateSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.TrimRight(base32.StdEncoding.EncodeToString(raw), "="), nil
}

// EnrollmentURI formats the otpauth provisioning URI consumed by standard
// authenticator apps. Pure and deterministic for a given input.
func (e *TOTPEngine) EnrollmentURI(secret, account, issuer string) string {
	u := url.URL{
		Scheme: "otpauth",
		Host:   "totp",
		Path:   "/" + issuer + ":" + account,
	}
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	params.Set("algorithm", "SHA1")
	params.Set("digits", "6")
	params.Set("period", "30")
	u.RawQuery = params.Encode()
	return u.String()
}

// Verify checks a submitted code against the secret for the current step
// and one adjacent step either side. Whitespace anywhere in the input is
// stripped; an empty or wrong-length result is a plain false. A secret
// that fails to decode is an error: that is a provisioning bug, not a bad
// code. Comparison is constant-time inside the otp library.
func (e *TOTPEngine) Verify(secret, code string) (bool, error) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	if len(normalized) != totpDigits.Length() {
		return false, nil
	}

	ok, err := totp.ValidateCustom(normalized, secret, e.nowFn(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    totpDigits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("validate totp: %w", err)
	}
	return ok, nil
}
