package identity

import "context"

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity sets the PublicIdentity in the given context
func WithIdentity(ctx context.Context, user *PublicIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, user)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*PublicIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*PublicIdentity)
	return raw, ok
}
