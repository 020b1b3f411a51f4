package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/newsletterhub/internal/domain"
	context_ "github.com/mkrupp/newsletterhub/internal/infra/context"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

// Authenticator resolves a bearer token to the id of the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (userID string, ok bool, err error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return token
}

// AuthorizingMiddleware rejects requests without a live session with 401.
// On success the user id and session token are added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	auth Authenticator,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			log.DebugContext(r.Context(), "no token provided")
			WriteError(w, domain.ErrNoSessionToken)

			return
		}

		userID, ok, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			log.ErrorContext(r.Context(), "authenticate failed", "error", err)
			WriteError(w, err)

			return
		} else if !ok {
			log.DebugContext(r.Context(), "invalid token")
			WriteError(w, domain.ErrNoSessionToken)

			return
		}

		recordUser(r.Context(), userID)

		next.ServeHTTP(w, r.WithContext(context_.WithSession(r.Context(), userID, token)))
	})
}
