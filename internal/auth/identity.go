// Package auth verifies identity-provider tokens and carries the caller's
// identity through the request context.
package auth

import (
	"context"
	"errors"
)

var (
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated caller. UserID is the owner key of every
// transaction.
type Identity struct {
	UserID string
	Email  string
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Resolver yields the caller of the current request; ok is false for
// anonymous requests.
type Resolver interface {
	Resolve(ctx context.Context) (Identity, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (Identity, bool)

func (f ResolverFunc) Resolve(ctx context.Context) (Identity, bool) {
	return f(ctx)
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// ContextResolver reads the identity stored by Middleware.
type ContextResolver struct{}

func (ContextResolver) Resolve(ctx context.Context) (Identity, bool) {
	return FromContext(ctx)
}
