package auth

import (
	"strings"
	"unicode"

	"tinyspots/internal/apperr"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
	passwordSpecials  = "!@#$%^&*"
)

// ValidatePassword enforces the signup password policy: at least eight
// characters with an upper case letter, a lower case letter, a digit and one
// of !@#$%^&*.
func ValidatePassword(pw string) error {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case len([]rune(pw)) < minPasswordLength:
		return apperr.Invalid("password", "must be at least 8 characters")
	case len(pw) > maxPasswordBytes:
		return apperr.Invalid("password", "must be at most 72 bytes")
	case !upper:
		return apperr.Invalid("password", "must contain an upper case letter")
	case !lower:
		return apperr.Invalid("password", "must contain a lower case letter")
	case !digit:
		return apperr.Invalid("password", "must contain a digit")
	case !special:
		return apperr.Invalid("password", "must contain one of "+passwordSpecials)
	}
	return nil
}
