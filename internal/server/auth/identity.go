package auth

import "context"

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is what the auth middleware learned about the caller. The zero
// value is an unauthenticated caller.
type Identity struct {
	Authenticated bool
	UserID        string
	Email         string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext never fails: a context without an identity is unauthenticated.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}
