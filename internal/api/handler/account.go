package handler

import (
	"net/http"

	"github.com/mcoot/pcarrot/internal/api/request"
	"github.com/mcoot/pcarrot/internal/api/response"
	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/session"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	accounts *account.Service
	gate     *session.Gate
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service, gate *session.Gate) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		gate:     gate,
	}
}

// Register handles POST /api/v1/accounts
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	id, err := h.accounts.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Account{ID: int64(id)})
}

// Login handles POST /api/v1/sessions
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	id, err := h.accounts.Authenticate(r.Context(), req.Name, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	token, err := h.gate.Issue(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Session{AccountID: int64(id), Token: token})
}

// ChangePassword handles POST /api/v1/account/password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := session.AccountID(r.Context())
	if !ok {
		WriteError(w, NewUnauthorizedError())
		return
	}

	var req request.ChangePasswordRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
