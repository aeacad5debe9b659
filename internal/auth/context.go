package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is what an authenticated request carries.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

type contextKey string

const identityKey contextKey = "auth_identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}
