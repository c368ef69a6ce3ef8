package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/pcarrot/internal/api/apierr"
	"github.com/mcoot/pcarrot/internal/session"
)

// Auth requires a Bearer session token and attaches its account id to the request context
func Auth(gate *session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id, err := gate.Resolve(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithAccountID(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token from the Authorization header
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
