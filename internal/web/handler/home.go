package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/services/news"
	"github.com/mcoot/pcarrot/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	news       *news.Service
	latestNews int
	site       Site
	logger     *slog.Logger
}

// NewHomeHandler creates a new HomeHandler showing latestNews items
func NewHomeHandler(newsService *news.Service, latestNews int, site Site, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		news:       newsService,
		latestNews: latestNews,
		site:       site,
		logger:     logger,
	}
}

// Home renders the latest news
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: h.site.pageData(r, "News"),
		News:     []model.NewsItem{},
	}

	items, err := h.news.Latest(r.Context(), h.latestNews)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load latest news", slog.String("error", err.Error()))
		data.Error = true
	} else {
		data.News = items
	}

	render(w, r, h.logger, pages.Home(data))
}
