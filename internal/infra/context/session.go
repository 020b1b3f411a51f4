package context

import (
	"context"
)

// WithSession returns a context carrying the authenticated user and the bearer
// token that identified them.
func WithSession(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserID, userID)

	return context.WithValue(ctx, contextKeySessionToken, token)
}

// UserIDFromContext extracts the authenticated user ID from the context.
// Returns false for requests that did not pass the authorizing middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(string)

	return userID, ok && userID != ""
}

// SessionTokenFromContext extracts the bearer token of the authenticated session.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKeySessionToken).(string)

	return token, ok && token != ""
}
