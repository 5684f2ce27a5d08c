package identity_test

import (
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := identity.HashPassword("Asdflba09")
	require.NoError(t, err)
	assert.NotEqual(t, "Asdflba09", hash)

	again, err := identity.HashPassword("Asdflba09")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salted hashes differ between calls")
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := identity.HashPassword("")
	assert.ErrorIs(t, err, identity.ErrNoEmptyString)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := identity.HashPassword("Asdflba09")
	require.NoError(t, err)

	assert.NoError(t, identity.ComparePasswordAndHash("Asdflba09", hash))
	assert.ErrorIs(t, identity.ComparePasswordAndHash("xxxxxx", hash), identity.ErrInvalidCredentials)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := identity.RandomPasswordHash()
	require.NotEmpty(t, hash)
	assert.ErrorIs(t, identity.ComparePasswordAndHash("anything", hash), identity.ErrInvalidCredentials)
}
