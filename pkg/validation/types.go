package validation

import "regexp"

// Branded string types for the identity core. Each is constructed only
// through its Parse function, so a value of one of these types is known
// to be well-formed everywhere downstream.

var (
	accountIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_~]{21}$`)
	passwordHashPattern = regexp.MustCompile(`^\$2[aby]?\$\d+\$[./A-Za-z0-9]{53}$`)
)

// AccountID is an opaque 21-character generated account identifier.
type AccountID string

// ParseAccountID validates the 21-character id format.
func ParseAccountID(s string) (AccountID, error) {
	if !accountIDPattern.MatchString(s) {
		return "", Errorf("accountId", "invalid id format: %q", s)
	}
	return AccountID(s), nil
}

func (id AccountID) String() string { return string(id) }

// Email is a validated email address.
type Email string

// ParseEmail validates the address format.
func ParseEmail(s string) (Email, error) {
	if err := validate.Var(s, "required,email"); err != nil {
		return "", Errorf("email", "invalid email format: %q", s)
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// PasswordRaw is a plaintext password that met the strength rule
// (at least 8 characters with upper, lower and digit). Never persisted.
type PasswordRaw string

// ParsePassword validates the password strength rule.
func ParsePassword(s string) (PasswordRaw, error) {
	if err := validate.Var(s, "rawpwd"); err != nil {
		return "", Errorf("password", "must be at least 8 characters with uppercase, lowercase and digit")
	}
	return PasswordRaw(s), nil
}

// PasswordHash is a bcrypt hash string, the only password representation
// that may be persisted.
type PasswordHash string

// ParsePasswordHash validates the bcrypt hash format.
func ParsePasswordHash(s string) (PasswordHash, error) {
	if !passwordHashPattern.MatchString(s) {
		return "", Errorf("passwordHash", "invalid hash format: %q", s)
	}
	return PasswordHash(s), nil
}

func (h PasswordHash) String() string { return string(h) }
