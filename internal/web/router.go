package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/services/news"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/web/handler"
	"github.com/mcoot/pcarrot/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	AccountService *account.Service
	NewsService    *news.Service
	Gate           *session.Gate
	Site           handler.Site
	LatestNews     int
	StaticDir      string // Path to static files directory

	// CSRFKey signs the csrf cookie, see middleware.CSRFKey
	CSRFKey []byte
	// SecureCookies marks the csrf cookie Secure
	SecureCookies bool
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger, handler.ErrorPage(cfg.Site)))
	r.Use(middleware.Logging(cfg.Logger))

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.NewsService, cfg.LatestNews, cfg.Site, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AccountService, cfg.Gate, cfg.Site, cfg.Logger)
	accountHandler := handler.NewAccountHandler(cfg.AccountService, cfg.Site, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	csrf := middleware.CSRF(middleware.CSRFConfig{
		Key:         cfg.CSRFKey,
		Secure:      cfg.SecureCookies,
		Logger:      cfg.Logger,
		FailurePage: handler.ForbiddenPage(cfg.Site),
	})

	// Public routes (session loaded for the nav links)
	public := r.NewRoute().Subrouter()
	public.Use(middleware.Flash())
	public.Use(cfg.Gate.Load)
	public.Use(csrf)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)

	// Protected routes (require a session)
	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Flash())
	protected.Use(cfg.Gate.RequireAuthenticated)
	protected.Use(csrf)
	protected.HandleFunc("/account", accountHandler.Page).Methods(http.MethodGet)
	protected.HandleFunc("/account", accountHandler.ChangePassword).Methods(http.MethodPost)

	return r
}
