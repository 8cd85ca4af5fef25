package httpx

import (
	"context"

	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// An unauthenticated session leaves ctx unchanged.
func SetSessionInContext(ctx context.Context, session domainauth.Session) context.Context {
	if !session.IsAuthenticated() {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session from context and a boolean indicating presence.
func SessionFromContext(ctx context.Context) (domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(domainauth.Session); ok && session.IsAuthenticated() {
		return session, true
	}
	return domainauth.Session{}, false
}

// IsGuest reports whether the current request context is unauthenticated.
func IsGuest(ctx context.Context) bool {
	_, ok := SessionFromContext(ctx)
	return !ok
}
