package identity_test

import (
	"context"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	repo := identity.NewRepositoryManager(setupBunDB(t))
	auth := identity.NewLocalAuthenticator(repo.Users())
	handler := identity.NewRegisterUserHandler(auth, repo)

	err := handler.Execute(context.Background(), identity.RegisterUserMessage{
		Email:    "asdf@asdf.com",
		Password: "Asdflba09",
	})
	require.NoError(t, err)

	user, err := repo.Users().GetByEmail(context.Background(), "asdf@asdf.com")
	require.NoError(t, err)
	assert.NoError(t, identity.ComparePasswordAndHash("Asdflba09", user.PasswordHash))

	err = handler.Execute(context.Background(), identity.RegisterUserMessage{
		Email:    "asdf@asdf.com",
		Password: "Asdflba09",
	})
	assert.True(t, identity.IsConflict(err))
}

func TestRegisterUserHandlerWithHashid(t *testing.T) {
	repo := identity.NewRepositoryManager(setupBunDB(t))
	auth := identity.NewLocalAuthenticator(repo.Users())
	handler := identity.NewRegisterUserHandler(auth, repo)

	err := handler.Execute(context.Background(), identity.RegisterUserMessage{
		Email:     "asdf@asdf.com",
		Password:  "Asdflba09",
		UseHashid: true,
	})
	require.NoError(t, err)

	expected, err := hashid.NewUUID("asdf@asdf.com")
	require.NoError(t, err)

	user, err := repo.Users().GetByEmail(context.Background(), "asdf@asdf.com")
	require.NoError(t, err)
	assert.Equal(t, expected, user.ID, "record ids derive from the email")
}

func TestRegisterUserHandlerCancelledContext(t *testing.T) {
	repo := identity.NewRepositoryManager(setupBunDB(t))
	auth := identity.NewLocalAuthenticator(repo.Users())
	handler := identity.NewRegisterUserHandler(auth, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := handler.Execute(ctx, identity.RegisterUserMessage{
		Email:    "asdf@asdf.com",
		Password: "Asdflba09",
	})
	assert.True(t, identity.IsTransient(err))
}
