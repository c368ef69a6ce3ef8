package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pcarrot/internal/api/apierr"
	"github.com/mcoot/pcarrot/internal/middleware"
)

// Logging creates request logging middleware for the API.
// Health probes are only logged at debug level.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "api")), middleware.QuietPrefix("/api/v1/health"))
}

// Recovery answers a panicking request with a detail-free INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
