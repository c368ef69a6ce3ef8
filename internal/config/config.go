// Package config holds the server settings: defaults, an optional JSON file
// overlay, and environment variable overrides applied in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/password"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/storage/sqlstore"
)

// Storage kinds
const (
	StorageSQL    = "sql"
	StorageMemory = "memory"
)

// PathEnv names the environment variable holding the JSON config file path
const PathEnv = "PCARROT_CONFIG"

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config holds runtime settings for the server and the admin CLI
type Config struct {
	ServerName        string
	ServerDescription string
	NumLatestNews     int

	StorageType      string
	DatabaseDriver   string
	DatabaseHost     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	CacheType           string
	CacheDir            string
	CacheDefaultTimeout time.Duration

	SecretKey      string
	SessionBackend string
	SessionTTL     time.Duration
	// SessionCookieSecure marks the session and CSRF cookies Secure.
	// Enable it when the site is served over HTTPS.
	SessionCookieSecure bool

	PasswordHasher string
	BcryptCost     int

	RedisURL string

	Host     string
	Port     int
	LogLevel string
}

// Default returns the development defaults.
// The secret key and database credentials must be overridden in production.
func Default() *Config {
	return &Config{
		ServerName:        "pCarrot",
		ServerDescription: "A Go AAC for OpenTibia",
		NumLatestNews:     3,

		StorageType:      StorageSQL,
		DatabaseDriver:   string(sqlstore.DialectMySQL),
		DatabaseHost:     "localhost",
		DatabaseUser:     "forgotten",
		DatabasePassword: "forgotten",
		DatabaseName:     "forgotten",

		CacheType:           cache.TypeFileSystem,
		CacheDir:            "instance/cache",
		CacheDefaultTimeout: 300 * time.Second,

		SecretKey:      "dev",
		SessionBackend: session.BackendSigned,
		SessionTTL:     24 * time.Hour,

		PasswordHasher: password.KindSHA1,
		BcryptCost:     10,

		RedisURL: "redis://localhost:6379",

		Host:     "",
		Port:     8080,
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the JSON file at path (or $PCARROT_CONFIG
// when path is empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and non-positive counts or durations
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value string
		allow []string
	}{
		{"storage type", c.StorageType, []string{StorageSQL, StorageMemory}},
		{"database driver", c.DatabaseDriver, []string{string(sqlstore.DialectMySQL), string(sqlstore.DialectSQLite)}},
		{"cache type", c.CacheType, []string{cache.TypeNull, cache.TypeSimple, cache.TypeFileSystem, cache.TypeRedis}},
		{"session backend", c.SessionBackend, []string{session.BackendMemory, session.BackendRedis, session.BackendSigned}},
		{"password hasher", c.PasswordHasher, []string{password.KindSHA1, password.KindBcrypt}},
		{"log level", c.LogLevel, []string{"debug", "info", "warn", "error"}},
	}
	for _, check := range checks {
		if !contains(check.allow, check.value) {
			return fmt.Errorf("%w: %s %q must be one of %v", ErrInvalid, check.name, check.value, check.allow)
		}
	}

	if c.NumLatestNews <= 0 {
		return fmt.Errorf("%w: latest news count must be positive", ErrInvalid)
	}
	if c.CacheDefaultTimeout <= 0 {
		return fmt.Errorf("%w: cache default timeout must be positive", ErrInvalid)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session ttl must be positive", ErrInvalid)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if c.CacheType == cache.TypeFileSystem && c.CacheDir == "" {
		return fmt.Errorf("%w: filesystem cache requires a cache dir", ErrInvalid)
	}
	if c.SessionBackend == session.BackendSigned && c.SecretKey == "" {
		return fmt.Errorf("%w: signed sessions require a secret key", ErrInvalid)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// UsesRedis reports whether any configured backend needs a redis connection
func (c *Config) UsesRedis() bool {
	return c.CacheType == cache.TypeRedis || c.SessionBackend == session.BackendRedis
}

// Database returns the SQL connection settings
func (c *Config) Database() sqlstore.Config {
	db := sqlstore.DefaultConfig()
	db.Dialect = sqlstore.Dialect(c.DatabaseDriver)
	db.Host = c.DatabaseHost
	db.User = c.DatabaseUser
	db.Password = c.DatabasePassword
	db.Name = c.DatabaseName
	return db
}

func contains(values []string, v string) bool {
	for _, allowed := range values {
		if allowed == v {
			return true
		}
	}
	return false
}
