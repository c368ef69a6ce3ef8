package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/web/middleware"
	"github.com/mcoot/pcarrot/internal/web/templates/layout"
	"github.com/mcoot/pcarrot/internal/web/templates/pages"
)

// GenericError is shown in place of any unexpected failure
const GenericError = "Oops! Something went wrong, try again"

// Site holds the server branding shown on every page
type Site struct {
	Name        string
	Description string
}

func (s Site) pageData(r *http.Request, title string) layout.PageData {
	_, loggedIn := session.AccountID(r.Context())
	return layout.PageData{
		Title:             title,
		ServerName:        s.Name,
		ServerDescription: s.Description,
		LoggedIn:          loggedIn,
		Flash:             middleware.GetFlash(r.Context()),
	}
}

// ErrorPage is shown when a request panics. It has no session state,
// so the nav always shows the anonymous links.
func ErrorPage(site Site) templ.Component {
	return pages.Message(pages.MessageData{
		PageData: layout.PageData{
			Title:             "Error",
			ServerName:        site.Name,
			ServerDescription: site.Description,
		},
		Heading:  "Internal Server Error",
		Text:     GenericError,
		LinkHref: "/",
		LinkText: "Return to the news",
	})
}

// ForbiddenPage is shown when a form is submitted without a valid csrf token
func ForbiddenPage(site Site) templ.Component {
	return pages.Message(pages.MessageData{
		PageData: layout.PageData{
			Title:             "Forbidden",
			ServerName:        site.Name,
			ServerDescription: site.Description,
		},
		Heading:  "Forbidden",
		Text:     "The form has expired. Reload the page and try again.",
		LinkHref: "/",
		LinkText: "Return to the news",
	})
}

func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
