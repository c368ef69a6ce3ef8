package factory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/pcarrot/internal/api"
	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/dependencies/clock"
	"github.com/mcoot/pcarrot/internal/dependencies/random"
	"github.com/mcoot/pcarrot/internal/markup"
	"github.com/mcoot/pcarrot/internal/password"
	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/services/news"
	"github.com/mcoot/pcarrot/internal/session"
	sessionmemory "github.com/mcoot/pcarrot/internal/session/memory"
	sessionredis "github.com/mcoot/pcarrot/internal/session/redis"
	"github.com/mcoot/pcarrot/internal/session/signed"
	"github.com/mcoot/pcarrot/internal/storage"
	"github.com/mcoot/pcarrot/internal/storage/memory"
	"github.com/mcoot/pcarrot/internal/storage/redisconn"
	"github.com/mcoot/pcarrot/internal/storage/sqlstore"
	"github.com/mcoot/pcarrot/internal/web"
	"github.com/mcoot/pcarrot/internal/web/handler"
	webmiddleware "github.com/mcoot/pcarrot/internal/web/middleware"
)

// App contains all wired application components
type App struct {
	Settings *config.Config
	Logger   *slog.Logger

	// Storage
	Storage storage.Storage
	// DB is nil unless the sql storage kind is used
	DB *sql.DB
	// Redis is nil unless a redis backed component is configured
	Redis *redis.Client

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Hasher         password.Hasher
	Cache          cache.Cache
	SessionStore   session.Store
	Gate           *session.Gate
	AccountService *account.Service
	NewsService    *news.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Settings are the loaded server settings (optional)
	// If nil, config.Default() is used
	Settings *config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// InitSchema creates the tables after opening a SQL database.
	// Used for throwaway SQLite databases.
	InitSchema bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Settings: settings,
		Logger:   logger,
		Clock:    clock.New(),
		Random:   random.New(),
	}

	if err := app.openStorage(cfg.InitSchema); err != nil {
		return nil, err
	}

	if settings.UsesRedis() {
		redisCfg := redisconn.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		client, err := redisconn.Open(redisCfg)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = client
	}

	if err := app.wire(); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) openStorage(initSchema bool) error {
	switch a.Settings.StorageType {
	case config.StorageMemory:
		a.Storage = memory.New()
	case config.StorageSQL:
		db, err := sqlstore.Open(a.Settings.Database())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		dialect := sqlstore.Dialect(a.Settings.DatabaseDriver)
		if initSchema {
			if err := sqlstore.InitSchema(context.Background(), db, dialect); err != nil {
				_ = db.Close()
				return fmt.Errorf("init schema: %w", err)
			}
		}
		a.DB = db
		a.Storage = sqlstore.New(db, dialect)
	default:
		return errors.New("invalid StorageType: must be 'sql' or 'memory'")
	}
	return nil
}

// wire builds the services on top of storage, clock, random and redis
func (a *App) wire() error {
	s := a.Settings

	hasher, err := password.New(s.PasswordHasher, s.BcryptCost)
	if err != nil {
		return err
	}
	a.Hasher = hasher

	cacheCfg := cache.DefaultConfig()
	cacheCfg.Type = s.CacheType
	cacheCfg.Dir = s.CacheDir
	cacheCfg.DefaultTimeout = s.CacheDefaultTimeout
	c, err := cache.New(cacheCfg, a.Clock, a.Redis)
	if err != nil {
		return err
	}
	a.Cache = c

	store, err := a.newSessionStore()
	if err != nil {
		return err
	}
	a.SessionStore = store

	a.Gate = session.NewGate(store, session.Config{
		TTL:    s.SessionTTL,
		Secure: s.SessionCookieSecure,
	}, a.Logger)
	a.AccountService = account.New(a.Storage, hasher, a.Clock, a.Logger)
	a.NewsService = news.New(
		a.Storage,
		markup.New(),
		cache.NewMemoizer(c, s.CacheDefaultTimeout, a.Logger),
		a.Clock,
		a.Logger,
	)
	return nil
}

func (a *App) newSessionStore() (session.Store, error) {
	ttl := a.Settings.SessionTTL
	switch a.Settings.SessionBackend {
	case session.BackendMemory:
		return sessionmemory.New(a.Clock, a.Random, ttl), nil
	case session.BackendRedis:
		if a.Redis == nil {
			return nil, errors.New("redis session backend requires a redis client")
		}
		return sessionredis.NewWithClient(a.Redis, a.Random, ttl), nil
	case session.BackendSigned:
		var denylist signed.Denylist = signed.NewMemoryDenylist(a.Clock)
		if a.Redis != nil {
			denylist = signed.NewRedisDenylist(a.Redis)
		}
		return signed.New(a.Settings.SecretKey, a.Clock, ttl, denylist)
	default:
		return nil, fmt.Errorf("unknown session backend %q", a.Settings.SessionBackend)
	}
}

// Routes combines the JSON API and the HTML site into one handler
func (a *App) Routes(staticDir string) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         a.Logger,
		AccountService: a.AccountService,
		NewsService:    a.NewsService,
		Gate:           a.Gate,
		SessionStore:   a.SessionStore,
		DefaultNews:    a.Settings.NumLatestNews,
		MaxNews:        maxAPINews,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         a.Logger,
		AccountService: a.AccountService,
		NewsService:    a.NewsService,
		Gate:           a.Gate,
		Site: handler.Site{
			Name:        a.Settings.ServerName,
			Description: a.Settings.ServerDescription,
		},
		LatestNews:    a.Settings.NumLatestNews,
		StaticDir:     staticDir,
		CSRFKey:       webmiddleware.CSRFKey(a.Settings.SecretKey),
		SecureCookies: a.Settings.SessionCookieSecure,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}

// maxAPINews caps the limit accepted by the news API
const maxAPINews = 50

// ServerConfig derives the HTTP server settings from the loaded config
func (a *App) ServerConfig() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = a.Settings.Host
	cfg.Port = a.Settings.Port
	return cfg
}

// Close releases the database and redis connections
func (a *App) Close() error {
	var errs []error
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
