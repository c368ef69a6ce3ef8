// Package session maps requests to the logged-in account.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/pcarrot/internal/model"
)

// ErrInvalidSession is returned by a Store for unknown, expired or tampered tokens
var ErrInvalidSession = errors.New("invalid or expired session")

// Store persists session tokens
type Store interface {
	Create(ctx context.Context, id model.AccountID) (string, error)
	Lookup(ctx context.Context, token string) (model.AccountID, error)
	Delete(ctx context.Context, token string) error
}

// Backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSigned = "signed"
)

const (
	// CookieName is the name of the session cookie
	CookieName = "session"

	// LoginPath is where RequireAuthenticated sends anonymous visitors
	LoginPath = "/login"
)

type contextKey string

const accountIDContextKey contextKey = "account_id"

// WithAccountID returns a copy of ctx carrying the account id
func WithAccountID(ctx context.Context, id model.AccountID) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}

// AccountID returns the account attached to ctx by Gate.Load
func AccountID(ctx context.Context) (model.AccountID, bool) {
	id, ok := ctx.Value(accountIDContextKey).(model.AccountID)
	return id, ok
}

// Gate ties the session store to HTTP requests through the session cookie
type Gate struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

// Config holds cookie settings for the gate
type Config struct {
	TTL    time.Duration
	Secure bool
}

// DefaultConfig returns default gate configuration
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

// NewGate creates a Gate over store
func NewGate(store Store, cfg Config, logger *slog.Logger) *Gate {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Gate{
		store:  store,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		logger: logger,
	}
}

// Load resolves the session cookie and attaches the account id to the request
// context. Requests without a valid session pass through anonymously.
func (g *Gate) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := g.fromCookie(r); ok {
			r = r.WithContext(WithAccountID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentAccountID returns the account of the request, if any
func (g *Gate) CurrentAccountID(r *http.Request) (model.AccountID, bool) {
	if id, ok := AccountID(r.Context()); ok {
		return id, true
	}
	return g.fromCookie(r)
}

// RequireAuthenticated redirects anonymous requests to the login page
func (g *Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := g.CurrentAccountID(r)
		if !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), id)))
	})
}

// Login starts a session for id and sets the session cookie
func (g *Gate) Login(w http.ResponseWriter, r *http.Request, id model.AccountID) error {
	token, err := g.store.Create(r.Context(), id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	g.logger.InfoContext(r.Context(), "session started", slog.Int64("account_id", int64(id)))
	return nil
}

// Logout ends the session of the request and expires the cookie.
// It is safe to call without a session.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return g.store.Delete(r.Context(), cookie.Value)
}

// Issue creates a session token without touching cookies, for API clients
func (g *Gate) Issue(ctx context.Context, id model.AccountID) (string, error) {
	return g.store.Create(ctx, id)
}

// Resolve looks up a token obtained from Issue
func (g *Gate) Resolve(ctx context.Context, token string) (model.AccountID, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	return g.store.Lookup(ctx, token)
}

func (g *Gate) fromCookie(r *http.Request) (model.AccountID, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}

	id, err := g.store.Lookup(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			g.logger.WarnContext(r.Context(), "session lookup failed", slog.String("error", err.Error()))
		}
		return 0, false
	}
	return id, true
}
