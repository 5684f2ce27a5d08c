package identity_test

import (
	"encoding/json"
	"testing"
	"time"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "asdf@asdf.com", identity.NormalizeEmail("  ASDF@Asdf.COM "))
	assert.Equal(t, "", identity.NormalizeEmail("   "))
}

func TestUserHasIdentifier(t *testing.T) {
	assert.False(t, (&identity.User{}).HasIdentifier())
	assert.True(t, (&identity.User{Email: "asdf@asdf.com"}).HasIdentifier())
	assert.True(t, (&identity.User{Username: "heythere12_"}).HasIdentifier())
}

func TestUserHasActiveResetToken(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (&identity.User{}).HasActiveResetToken(now))
	assert.False(t, (&identity.User{ResetToken: "tok"}).HasActiveResetToken(now))
	assert.False(t, (&identity.User{ResetToken: "tok", ResetTokenExpiresAt: &past}).HasActiveResetToken(now))
	assert.True(t, (&identity.User{ResetToken: "tok", ResetTokenExpiresAt: &future}).HasActiveResetToken(now))
}

func TestUserPublicStripsSecrets(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	user := &identity.User{
		ID:                  uuid.New(),
		Email:               "asdf@asdf.com",
		Username:            "heythere12_",
		PasswordHash:        "secret-hash",
		ResetToken:          "secret-token",
		ResetTokenExpiresAt: &expiresAt,
	}

	view := user.Public()
	require.NotNil(t, view)
	assert.Equal(t, user.ID.String(), view.ID)
	assert.Equal(t, user.Email, view.Email)
	assert.Equal(t, user.Username, view.Username)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "secret-token")

	var nilUser *identity.User
	assert.Nil(t, nilUser.Public())
}

func TestUserJSONHidesSecretFields(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	user := &identity.User{
		ID:                  uuid.New(),
		Email:               "asdf@asdf.com",
		PasswordHash:        "secret-hash",
		ResetToken:          "secret-token",
		ResetTokenExpiresAt: &expiresAt,
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "secret-token")
}

func TestUserAddMetadata(t *testing.T) {
	user := &identity.User{}
	user.AddMetadata("source", "signup").AddMetadata("plan", "free")

	assert.Equal(t, "signup", user.Metadata["source"])
	assert.Equal(t, "free", user.Metadata["plan"])
}
