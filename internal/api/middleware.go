// Package api implements the Wunjo REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userKey contextKey = "user"

// TokenVerifier validates an access token and returns the username it
// belongs to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware returns middleware that validates a Bearer token through the
// verifier and stores the username in the request context. A nil verifier
// disables authentication and lets every request through.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			username, err := verifier.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, username)))
		})
	}
}

// usernameFrom returns the authenticated username, empty when auth is
// disabled.
func usernameFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}
