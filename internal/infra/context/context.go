// Package context carries request scoped values between transport middleware and handlers.
package context

type contextKey string

const (
	contextKeyTraceID      = contextKey("traceID")
	contextKeyUserID       = contextKey("userID")
	contextKeySessionToken = contextKey("sessionToken")
)
