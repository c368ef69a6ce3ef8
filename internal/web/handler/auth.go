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

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	accounts *account.Service
	gate     *session.Gate
	site     Site
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *account.Service, gate *session.Gate, site Site, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		gate:     gate,
		site:     site,
		logger:   logger,
	}
}

// RegisterPage renders the registration form
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, forms.Register{}, nil, "")
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseRegister(r)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderRegister(w, r, form, errs, "")
		return
	}

	_, err := h.accounts.Register(r.Context(), form.AccountName, form.Password)
	if err != nil {
		if errors.Is(err, account.ErrNameInUse) {
			h.renderRegister(w, r, form, forms.Errors{"account_name": "Account name already in use"}, "")
			return
		}
		h.renderRegister(w, r, form, nil, GenericError)
		return
	}

	render(w, r, h.logger, pages.Message(pages.MessageData{
		PageData: h.site.pageData(r, "Account created"),
		Heading:  "Account created",
		Text:     "Your account has been created. You can now log in.",
		LinkHref: "/login",
		LinkText: "Log in",
	}))
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, forms.Login{}, nil, "")
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := forms.ParseLogin(r)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderLogin(w, r, form, errs, "")
		return
	}

	id, err := h.accounts.Authenticate(r.Context(), form.AccountName, form.Password)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			msg := "Invalid account name or password"
			h.renderLogin(w, r, form, forms.Errors{"account_name": msg, "password": msg}, "")
			return
		}
		h.renderLogin(w, r, form, nil, GenericError)
		return
	}

	if err := h.gate.Login(w, r, id); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start session",
			slog.Int64("account_id", int64(id)),
			slog.String("error", err.Error()),
		)
		h.renderLogin(w, r, form, nil, GenericError)
		return
	}

	middleware.SetFlash(w, "success", "Welcome back, "+form.AccountName+"!")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

// Logout ends the session and shows a confirmation
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "failed to delete session", slog.String("error", err.Error()))
	}

	data := h.site.pageData(r, "Logged out")
	data.LoggedIn = false
	render(w, r, h.logger, pages.Message(pages.MessageData{
		PageData: data,
		Heading:  "Logged out",
		Text:     "You have been logged out.",
		LinkHref: "/",
		LinkText: "Back to the news",
	}))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, form forms.Register, errs forms.Errors, formError string) {
	render(w, r, h.logger, pages.Form(pages.FormData{
		PageData:  h.site.pageData(r, "Register"),
		Heading:   "Create an account",
		Action:    "/register",
		FormError: formError,
		CSRFToken: middleware.CSRFToken(r),
		Fields: []pages.Field{
			{Name: "account_name", Label: "Account name", Type: "text", Placeholder: "Type your account name", Value: form.AccountName, Error: errs["account_name"]},
			{Name: "password", Label: "Password", Type: "password", Placeholder: "Type your password", Error: errs["password"]},
			{Name: "confirm_password", Label: "Confirm password", Type: "password", Placeholder: "Confirm your password", Error: errs["confirm_password"]},
		},
	}))
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, form forms.Login, errs forms.Errors, formError string) {
	render(w, r, h.logger, pages.Form(pages.FormData{
		PageData:  h.site.pageData(r, "Login"),
		Heading:   "Log in",
		Action:    "/login",
		FormError: formError,
		CSRFToken: middleware.CSRFToken(r),
		Fields: []pages.Field{
			{Name: "account_name", Label: "Account name", Type: "text", Placeholder: "Type your account name", Value: form.AccountName, Error: errs["account_name"]},
			{Name: "password", Label: "Password", Type: "password", Placeholder: "Type your password", Error: errs["password"]},
		},
	}))
}
