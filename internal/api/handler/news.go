package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/pcarrot/internal/api/response"
	"github.com/mcoot/pcarrot/internal/services/news"
)

// NewsHandler serves the news feed
type NewsHandler struct {
	news         *news.Service
	defaultLimit int
	maxLimit     int
}

// NewNewsHandler creates a news handler. A request without a limit gets
// defaultLimit items; larger limits are rejected.
func NewNewsHandler(newsService *news.Service, defaultLimit, maxLimit int) *NewsHandler {
	return &NewsHandler{
		news:         newsService,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List handles GET /api/v1/news?limit=n
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.maxLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and "+strconv.Itoa(h.maxLimit)))
			return
		}
		limit = n
	}

	items, err := h.news.Latest(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.NewsListFromModel(items))
}
