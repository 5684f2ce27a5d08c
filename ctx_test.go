package identity_test

import (
	"context"
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContext(t *testing.T) {
	_, ok := identity.IdentityFromContext(context.Background())
	assert.False(t, ok)

	user := &identity.PublicIdentity{ID: uuid.NewString(), Email: "asdf@asdf.com"}
	ctx := identity.WithIdentity(context.Background(), user)

	got, ok := identity.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}
