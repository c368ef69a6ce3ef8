package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pcarrot/internal/api/handler"
	"github.com/mcoot/pcarrot/internal/api/middleware"
	"github.com/mcoot/pcarrot/internal/api/response"
	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/services/news"
	"github.com/mcoot/pcarrot/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AccountService *account.Service
	NewsService    *news.Service
	Gate           *session.Gate
	SessionStore   session.Store
	// DefaultNews is the number of items returned when no limit is given
	DefaultNews int
	// MaxNews caps the limit query parameter
	MaxNews int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	maxNews := cfg.MaxNews
	if maxNews <= 0 {
		maxNews = 50
	}
	defaultNews := cfg.DefaultNews
	if defaultNews <= 0 || defaultNews > maxNews {
		defaultNews = min(3, maxNews)
	}

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AccountService, cfg.Gate)
	sessionHandler := handler.NewSessionHandler(cfg.SessionStore)
	newsHandler := handler.NewNewsHandler(cfg.NewsService, defaultNews, maxNews)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Gate)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/news", newsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/accounts", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/sessions", accountHandler.Login).Methods(http.MethodPost)

	// Routes requiring a Bearer session token
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/sessions", sessionHandler.Logout).Methods(http.MethodDelete)
	protected.HandleFunc("/account/password", accountHandler.ChangePassword).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
