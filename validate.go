package identity

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Username constraints: alphanumeric plus underscore, bounded length.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// MinPasswordLength is the password policy length floor.
const MinPasswordLength = 8

var (
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasDigitRegex  = regexp.MustCompile(`[0-9]`)
)

// ValidateEmail checks presence and syntax of an email address.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required.Error("email is required"),
		is.Email.Error("must be a valid email address"),
	)
	if err != nil {
		return validationError("email", err.Error())
	}
	return nil
}

// ValidateUsername checks the username pattern and length bounds.
func ValidateUsername(username string) error {
	err := validation.Validate(username,
		validation.Required.Error("username is required"),
		validation.Length(MinUsernameLength, MaxUsernameLength),
		validation.Match(usernameRegex).
			Error("must contain only letters, numbers, and underscores"),
	)
	if err != nil {
		return validationError("username", err.Error())
	}
	return nil
}

// ValidatePassword enforces the password policy: minimum length plus at
// least one letter and one digit.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.Length(MinPasswordLength, 0),
		validation.Match(hasLetterRegex).Error("must contain at least one letter"),
		validation.Match(hasDigitRegex).Error("must contain at least one digit"),
	)
	if err != nil {
		return validationError("password", err.Error())
	}
	return nil
}
