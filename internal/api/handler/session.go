package handler

import (
	"net/http"

	"github.com/mcoot/pcarrot/internal/api/middleware"
	"github.com/mcoot/pcarrot/internal/api/response"
	"github.com/mcoot/pcarrot/internal/session"
)

// SessionHandler handles session endpoints other than login
type SessionHandler struct {
	store session.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store session.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// Logout handles DELETE /api/v1/sessions.
// Signed tokens stay valid until they expire.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), middleware.BearerToken(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
