// Package auth resolves the identity of the caller. Sign-in and sign-out are
// owned by the external auth provider; this package only consumes tokens it
// issued.
package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Provider yields the identity of the current caller, if any.
type Provider interface {
	CurrentUser(ctx context.Context) (uuid.UUID, bool)
}

// WithUser returns a context carrying userID as the current identity.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the identity stored by WithUser.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ContextProvider reads the identity placed in the context by the auth
// middleware.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (uuid.UUID, bool) {
	return UserFromContext(ctx)
}

// StaticProvider always reports the same identity. A zero value reports none.
type StaticProvider uuid.UUID

func (p StaticProvider) CurrentUser(context.Context) (uuid.UUID, bool) {
	id := uuid.UUID(p)
	return id, id != uuid.Nil
}
