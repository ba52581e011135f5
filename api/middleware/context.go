package middleware

import (
	"context"

	"github.com/cafemenu/cafemenu-backend/pkg/auth"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor, or nil for anonymous
// requests.
func ActorFromContext(ctx context.Context) *auth.Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*auth.Actor); ok {
		return v
	}
	return nil
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, actor *auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
