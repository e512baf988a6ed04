package entities

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const MinPasswordLength = 8

type Identity struct {
	Username      string
	Credential    string
	DisplayName   string
	EmailVerified bool
	IsAdmin       bool
}

// PendingRegistration is an unverified identity waiting on its single-use
// verification token.
type PendingRegistration struct {
	Identity Identity
	Token    string
}

// PasswordSatisfiesPolicy reports whether password has at least
// MinPasswordLength characters, a digit, an uppercase letter and a character
// that is neither a letter nor a digit.
func PasswordSatisfiesPolicy(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	var hasDigit, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}
	return hasDigit && hasUpper && hasSpecial
}

// ValidUsername rejects empty names and names carrying whitespace or control
// characters, which the record formats cannot hold.
func ValidUsername(username string) bool {
	if username == "" {
		return false
	}
	return strings.IndexFunc(username, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) < 0
}

// ValidFreeText rejects text that would break a single-line record.
func ValidFreeText(value string) bool {
	return strings.IndexFunc(value, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\t' || unicode.IsControl(r)
	}) < 0
}
