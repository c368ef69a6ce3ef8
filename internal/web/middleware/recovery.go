package middleware

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/pcarrot/internal/middleware"
)

// Recovery creates panic recovery middleware for the HTML site.
// page is rendered with a 500 status; a nil page falls back to plain text.
func Recovery(logger *slog.Logger, page templ.Component) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		if page == nil {
			middleware.DefaultPanicHandler(w, r, nil)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if err := page.Render(r.Context(), w); err != nil {
			logger.ErrorContext(r.Context(), "failed to render error page", slog.String("error", err.Error()))
		}
	})
}
