// Package validation holds the input rules shared by request binding,
// services and the command-line tools.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
	minUsernameLen = 3
	maxUsernameLen = 30
	maxEmailLen    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]*[A-Za-z0-9])?$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePassword requires 12 to 128 bytes with at least one upper-case
// letter, one lower-case letter, one digit and one ASCII punctuation or
// symbol character. It reports the first rule that fails.
func ValidatePassword(password string) error {
	switch {
	case len(password) < minPasswordLen:
		return errors.New("password must be at least 12 characters long")
	case len(password) > maxPasswordLen:
		return errors.New("password must not exceed 128 characters")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case r < unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)):
			special = true
		}
	}

	switch {
	case !upper:
		return errors.New("password must contain at least one uppercase letter")
	case !lower:
		return errors.New("password must contain at least one lowercase letter")
	case !digit:
		return errors.New("password must contain at least one digit")
	case !special:
		return errors.New("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateUsername allows 3 to 30 letters, digits, underscores and hyphens,
// starting and ending with a letter or digit.
func ValidateUsername(username string) error {
	switch {
	case len(username) < minUsernameLen:
		return errors.New("username must be at least 3 characters long")
	case len(username) > maxUsernameLen:
		return errors.New("username must not exceed 30 characters")
	case strings.Trim(username, "_-") != username:
		return errors.New("username cannot start or end with underscore or hyphen")
	case !usernamePattern.MatchString(username):
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape and length.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return errors.New("email must not exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}
