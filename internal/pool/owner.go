package pool

import (
	"context"

	"github.com/google/uuid"
)

// defaultOwner keys connections for callers that never attached a token.
// Single-goroutine programs get pooling with no ceremony.
const defaultOwner = "default"

type ownerCtxKey struct{}

// WithOwner attaches a fresh caller token to the context. Every worker
// that issues filesystem operations concurrently should carry its own
// token, so no two workers ever interleave commands on one control
// connection.
func WithOwner(ctx context.Context) context.Context {
	return WithOwnerToken(ctx, uuid.NewString())
}

// WithOwnerToken attaches an explicit caller token.
func WithOwnerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, token)
}

// OwnerFromContext returns the caller token, or the shared default.
func OwnerFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(ownerCtxKey{}).(string); ok && token != "" {
		return token
	}
	return defaultOwner
}
