// Package cache provides the key/value caches used to memoize rendered
// content. Backend names follow Flask-Caching so existing configuration
// files keep working.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
)

// Cache stores JSON-encodable values under string keys.
// A ttl <= 0 stores the value without expiry.
type Cache interface {
	// Get decodes the value stored under key into dst and reports whether it was found
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Backend types
const (
	TypeNull       = "NullCache"
	TypeSimple     = "SimpleCache"
	TypeFileSystem = "FileSystemCache"
	TypeRedis      = "RedisCache"
)

// ErrUnknownType is returned by New for an unrecognised cache type
var ErrUnknownType = errors.New("unknown cache type")

// Config holds cache settings
type Config struct {
	Type           string
	Dir            string
	DefaultTimeout time.Duration
	// Threshold caps the number of entries held by SimpleCache
	Threshold int
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		Type:           TypeFileSystem,
		Dir:            "instance/cache",
		DefaultTimeout: 300 * time.Second,
		Threshold:      500,
	}
}

// New builds the backend selected by cfg.Type. client is only used by
// RedisCache and may be nil otherwise.
func New(cfg Config, clk clock.Clock, client *redis.Client) (Cache, error) {
	switch cfg.Type {
	case TypeNull:
		return NullCache{}, nil
	case TypeSimple:
		return NewSimple(clk, cfg.Threshold), nil
	case TypeFileSystem:
		return NewFileSystem(cfg.Dir, clk)
	case TypeRedis:
		if client == nil {
			return nil, errors.New("redis cache requires a redis client")
		}
		return NewRedis(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// Memoizer coalesces concurrent loads of the same key and stores the result
// in a Cache. Cache failures are logged and treated as misses.
type Memoizer struct {
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewMemoizer creates a Memoizer storing values for ttl
func NewMemoizer(c Cache, ttl time.Duration, logger *slog.Logger) *Memoizer {
	return &Memoizer{
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Memoize returns the cached value for key, calling load on a miss
func Memoize[T any](ctx context.Context, m *Memoizer, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := m.cache.Get(ctx, key, &cached)
	if err != nil {
		m.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	} else if hit {
		return cached, nil
	}

	// Callers joining the load share its result, so it must outlive the
	// cancellation of whichever caller started it.
	shared := context.WithoutCancel(ctx)
	result, err, _ := m.group.Do(key, func() (any, error) {
		value, err := load(shared)
		if err != nil {
			return nil, err
		}

		if err := m.cache.Set(shared, key, value, m.ttl); err != nil {
			m.logger.WarnContext(shared, "cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// Forget removes key from the underlying cache
func (m *Memoizer) Forget(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}
