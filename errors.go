package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials marks the unified login failure.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeLoginRequired marks operations attempted without a session.
	TextCodeLoginRequired = "LOGIN_REQUIRED"
	// TextCodeResetTokenInvalid marks absent, expired, or consumed reset tokens.
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	// TextCodeTooManyAttempts marks the login attempt cool down.
	TextCodeTooManyAttempts = "TOO_MANY_LOGIN_ATTEMPTS"
)

// ErrInvalidCredentials is returned for both unknown identifiers and wrong
// passwords. Login has a single failure value so the error surface cannot be
// used to enumerate accounts.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials)

// ErrLoginRequired is returned when a guarded operation is attempted by an
// anonymous session.
var ErrLoginRequired = goerrors.New("operation requires an authenticated session", goerrors.CategoryAuth).
	WithTextCode(TextCodeLoginRequired)

// ErrResetTokenInvalid covers reset tokens that are unknown, expired, or
// already consumed. The three cases are indistinguishable to the caller.
var ErrResetTokenInvalid = goerrors.New("invalid or expired password reset token", goerrors.CategoryAuth).
	WithTextCode(TextCodeResetTokenInvalid)

// ErrTooManyLoginAttempts is returned while an account is cooling down.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// validationError reports a malformed or missing input field.
func validationError(field, msg string) error {
	return goerrors.New(msg, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
}

// conflictError reports an identifying field already in use.
func conflictError(field, value string) error {
	return goerrors.New(field+" is already in use", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"field": field, "value": value})
}

// notFoundError reports a credential record that does not exist. It carries
// CategoryNotFound so goerrors.IsNotFound recognizes it; the store maps
// every missing-record condition through here rather than leaking driver or
// repository signals upward.
func notFoundError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryNotFound)
}

// transientError wraps store or timeout failures that the caller may retry.
func transientError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, msg)
}

func hasCategory(err error, category goerrors.Category) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == category
	}
	return false
}

// IsNotFound reports whether err marks a missing credential record.
func IsNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return hasCategory(err, goerrors.CategoryValidation)
}

// IsConflict reports whether err is an identifying field conflict.
func IsConflict(err error) bool {
	return hasCategory(err, goerrors.CategoryConflict)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return hasCategory(err, goerrors.CategoryAuth)
}

// IsTransient reports whether err is a retryable store or timeout failure.
func IsTransient(err error) bool {
	return hasCategory(err, goerrors.CategoryOperation)
}
