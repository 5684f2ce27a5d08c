package identity

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenBytes is the entropy of a reset token. 32 bytes keeps guessing
// infeasible well past the 128 bit floor.
const ResetTokenBytes = 32

// DefaultResetTokenTTL is how long a reset token stays redeemable.
const DefaultResetTokenTTL = time.Hour

// GenerateResetToken draws a single-use password reset token from the
// system's secure random source, URL-safe encoded, expiring ttl from now.
func GenerateResetToken(ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}

	b := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(b); err != nil {
		return "", time.Time{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	return base64.RawURLEncoding.EncodeToString(b), time.Now().Add(ttl), nil
}

// GenerateSessionID draws an opaque id for server-side sessions.
// 32 bytes = 256 bits of entropy.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate session id")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
