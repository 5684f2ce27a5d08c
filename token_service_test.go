package identity_test

import (
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := identity.NewTokenService([]byte("test-signing-key"), time.Hour, "identity-test")

	userID := uuid.NewString()
	token, err := svc.Mint(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.UserFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenServiceRejectsForeignSignatures(t *testing.T) {
	svc := identity.NewTokenService([]byte("test-signing-key"), time.Hour, "identity-test")
	other := identity.NewTokenService([]byte("a-different-key"), time.Hour, "identity-test")

	token, err := other.Mint(uuid.NewString())
	require.NoError(t, err)

	_, err = svc.UserFromToken(token)
	assert.True(t, identity.IsAuth(err))
}

func TestTokenServiceRejectsExpiredTokens(t *testing.T) {
	svc := identity.NewTokenService([]byte("test-signing-key"), -time.Hour, "identity-test")
	// negative expirations fall back to the default in the constructor,
	// so mint with a short-lived service built directly
	short := identity.NewTokenService([]byte("test-signing-key"), time.Millisecond, "identity-test")

	token, err := short.Mint(uuid.NewString())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.UserFromToken(token)
	assert.True(t, identity.IsAuth(err))
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	svc := identity.NewTokenService([]byte("test-signing-key"), time.Hour, "identity-test")
	foreign := identity.NewTokenService([]byte("test-signing-key"), time.Hour, "someone-else")

	token, err := foreign.Mint(uuid.NewString())
	require.NoError(t, err)

	_, err = svc.UserFromToken(token)
	assert.True(t, identity.IsAuth(err))
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := identity.NewTokenService([]byte("test-signing-key"), time.Hour, "")

	_, err := svc.UserFromToken("not-a-token")
	assert.True(t, identity.IsAuth(err))
}
