package auth

import (
	"context"

	"taskhub.org/internal/user"
)

type actorContextKey struct{}

// ContextWithActor attaches the authenticated user to the context.
func ContextWithActor(ctx context.Context, actor user.User) context.Context {
	return context.WithValue(ctx, actorContextKey{}, &actor)
}

// ActorFromContext extracts the authenticated user from the context.
func ActorFromContext(ctx context.Context) (user.User, bool) {
	if ctx == nil {
		return user.User{}, false
	}
	v, ok := ctx.Value(actorContextKey{}).(*user.User)
	if !ok || v == nil {
		return user.User{}, false
	}
	return *v, true
}
