package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pcarrot/internal/middleware"
)

// Logging creates request logging middleware for the HTML site.
// Static assets are only logged at debug level.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")), middleware.QuietPrefix("/static/"))
}
