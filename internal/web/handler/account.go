package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/web/forms"
	"github.com/mcoot/pcarrot/internal/web/middleware"
	"github.com/mcoot/pcarrot/internal/web/templates/pages"
)

// AccountHandler serves the account management page. Routes must be wrapped
// in Gate.RequireAuthenticated.
type AccountHandler struct {
	accounts *account.Service
	site     Site
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *account.Service, site Site, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		site:     site,
		logger:   logger,
	}
}

// Page renders the change password form
func (h *AccountHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderChangePassword(w, r, nil, "")
}

// ChangePassword handles change password form submission
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := session.AccountID(r.Context())
	if !ok {
		http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
		return
	}

	form := forms.ParseChangePassword(r)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderChangePassword(w, r, errs, "")
		return
	}

	err := h.accounts.ChangePassword(r.Context(), id, form.CurrentPassword, form.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, account.ErrSamePassword):
		h.renderChangePassword(w, r, forms.Errors{"new_password": "Your new password must be different from the current one"}, "")
		return
	case errors.Is(err, account.ErrInvalidCurrentPassword):
		h.renderChangePassword(w, r, forms.Errors{"current_password": "Invalid current password"}, "")
		return
	default:
		h.renderChangePassword(w, r, nil, GenericError)
		return
	}

	render(w, r, h.logger, pages.Message(pages.MessageData{
		PageData: h.site.pageData(r, "Password changed"),
		Heading:  "Password changed",
		Text:     "Your password has been changed.",
		LinkHref: "/account",
		LinkText: "Back to your account",
	}))
}

func (h *AccountHandler) renderChangePassword(w http.ResponseWriter, r *http.Request, errs forms.Errors, formError string) {
	render(w, r, h.logger, pages.Form(pages.FormData{
		PageData:  h.site.pageData(r, "Account"),
		Heading:   "Change password",
		Action:    "/account",
		FormError: formError,
		CSRFToken: middleware.CSRFToken(r),
		Fields: []pages.Field{
			{Name: "current_password", Label: "Current password", Type: "password", Placeholder: "Type your current password", Error: errs["current_password"]},
			{Name: "new_password", Label: "New password", Type: "password", Placeholder: "Type your new password", Error: errs["new_password"]},
			{Name: "confirm_password", Label: "Confirm new password", Type: "password", Placeholder: "Confirm your new password", Error: errs["confirm_password"]},
		},
	}))
}
