package identity_test

import (
	"context"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializePasswordResetHandler(t *testing.T) {
	repo := setupUsersRepo(t)

	requests := 0
	auth := identity.NewLocalAuthenticator(repo).WithHooks(identity.Hooks{
		OnPasswordResetRequested: func(ctx context.Context, req identity.PasswordResetRequest) {
			requests++
		},
	})
	handler := identity.NewInitializePasswordResetHandler(auth)

	_, err := auth.Register(context.Background(), nil, "asdf@asdf.com", "Asdflba09")
	require.NoError(t, err)

	var resp *identity.InitializePasswordResetResponse
	err = handler.Execute(context.Background(), identity.InitializePasswordResetMessage{
		Identifier: "asdf@asdf.com",
		OnResponse: func(r *identity.InitializePasswordResetResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, requests)

	resp = nil
	err = handler.Execute(context.Background(), identity.InitializePasswordResetMessage{
		Identifier: "ghost@asdf.com",
		OnResponse: func(r *identity.InitializePasswordResetResponse) { resp = r },
	})
	require.NoError(t, err, "unknown accounts report success")
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, requests, "no token issued for unknown accounts")
}
