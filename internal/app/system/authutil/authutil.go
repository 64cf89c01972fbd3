// Package authutil holds the credential helpers shared by the sign-up and
// sign-in handlers: bcrypt hashing, password policy, and the light email
// shape check applied before any store call.
package authutil

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the sign-up password policy. The returned
// error message is shown to the user verbatim.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if strings.TrimSpace(password) != password {
		return fmt.Errorf("password must not start or end with spaces")
	}
	return nil
}

// PasswordRules is the human-readable policy shown next to password
// fields in forms.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters.", minPasswordLen)
}

// NormalizeEmail lowercases and trims an email address. All storage and
// lookups go through this so the unique index on users.email holds.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail applies a light shape check: one @, non-empty local
// part, and a dotted domain. Real validation happens by sending the
// confirmation link.
func ValidateEmail(email string) error {
	if !isValidEmail(email) {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func isValidEmail(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return false
	}
	if strings.ContainsAny(email, " \t") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return true
}
