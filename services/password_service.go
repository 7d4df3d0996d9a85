package services

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper     = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower     = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber    = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial   = errors.New("password must contain at least one of @$!%*?&")
	ErrPasswordInvalidChar = errors.New("password may only contain letters, digits and @$!%*?&")
	ErrInvalidUsername     = errors.New("username must be 4 to 30 letters, digits or underscores")
)

const passwordSpecials = "@$!%*?&"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{4,30}$`)

// PasswordValidator checks admin passwords.
type PasswordValidator struct {
	minLength int
}

func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{minLength: 8}
}

func (pv *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < pv.minLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case char > unicode.MaxASCII:
			return ErrPasswordInvalidChar
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case strings.ContainsRune(passwordSpecials, char):
			hasSpecial = true
		default:
			return ErrPasswordInvalidChar
		}
	}

	switch {
	case !hasUpper:
		return ErrPasswordNoUpper
	case !hasLower:
		return ErrPasswordNoLower
	case !hasNumber:
		return ErrPasswordNoNumber
	case !hasSpecial:
		return ErrPasswordNoSpecial
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
