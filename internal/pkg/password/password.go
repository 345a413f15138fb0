package password

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"orgchat/internal/core/domain"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8
)

// weakSubstrings are rejected anywhere inside a password, case-insensitive.
var weakSubstrings = []string{"password", "12345678", "qwerty", "admin"}

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Validate checks a candidate password against the strength policy.
// Every violated rule is collected, so the caller gets the full list
// rather than the first failure.
func Validate(password string) error {
	var violations []string

	if len(password) < MinLength {
		violations = append(violations, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must contain at least one number")
	}
	if !hasSpecial {
		violations = append(violations, "password must contain at least one special character")
	}

	lowered := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lowered, weak) {
			violations = append(violations, "password contains common weak patterns")
			break
		}
	}

	if len(violations) > 0 {
		return &domain.PolicyViolations{Violations: violations}
	}
	return nil
}
