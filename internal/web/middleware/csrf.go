package middleware

import (
	"crypto/sha256"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/csrf"
)

// CSRFFieldName is the hidden form field carrying the token
const CSRFFieldName = "csrf_token"

// CSRFConfig configures the CSRF middleware
type CSRFConfig struct {
	Key    []byte
	Secure bool
	Logger *slog.Logger
	// FailurePage is rendered with a 403 status when the token is missing or wrong
	FailurePage templ.Component
}

// CSRFKey derives the 32 byte cookie signing key from the application secret
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte("pcarrot csrf:" + secret))
	return sum[:]
}

// CSRF rejects unsafe requests that do not echo the token of the csrf cookie.
// Over plain HTTP the Referer check is skipped; the token check still applies.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	protect := csrf.Protect(cfg.Key,
		csrf.FieldName(CSRFFieldName),
		csrf.Path("/"),
		csrf.Secure(cfg.Secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(csrfFailure(cfg)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token to embed in forms rendered for r
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

func csrfFailure(cfg CSRFConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		cfg.Logger.WarnContext(r.Context(), "csrf check failed",
			slog.String("path", r.URL.Path),
			slog.String("reason", reason),
		)

		if cfg.FailurePage == nil {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		if err := cfg.FailurePage.Render(r.Context(), w); err != nil {
			cfg.Logger.ErrorContext(r.Context(), "failed to render csrf failure page", slog.String("error", err.Error()))
		}
	})
}
