package ports

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TOTPEngine generates and verifies time-based one-time codes.
// Verify returns false for a wrong or empty code; it returns an error only
// for a malformed secret, which indicates a provisioning bug rather than
// bad user input.
type TOTPEngine interface {
	GenerateSecret() (string, error)
	EnrollmentURI(secret, account, issuer string) string
	Verify(secret, code string) (bool, error)
}
