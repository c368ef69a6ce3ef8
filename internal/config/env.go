package config

import (
	"fmt"
	"strconv"
	"time"
)

// lookupFunc matches os.LookupEnv
type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	stringVars := map[string]*string{
		"OT_SERVER_NAME":        &c.ServerName,
		"OT_SERVER_DESCRIPTION": &c.ServerDescription,
		"STORAGE_TYPE":          &c.StorageType,
		"OT_DATABASE_DRIVER":    &c.DatabaseDriver,
		"OT_DATABASE_HOST":      &c.DatabaseHost,
		"OT_DATABASE_USER":      &c.DatabaseUser,
		"OT_DATABASE_PASSWORD":  &c.DatabasePassword,
		"OT_DATABASE_NAME":      &c.DatabaseName,
		"CACHE_TYPE":            &c.CacheType,
		"CACHE_DIR":             &c.CacheDir,
		"SECRET_KEY":            &c.SecretKey,
		"SESSION_BACKEND":       &c.SessionBackend,
		"PASSWORD_HASHER":       &c.PasswordHasher,
		"REDIS_URL":             &c.RedisURL,
		"HOST":                  &c.Host,
		"LOG_LEVEL":             &c.LogLevel,
	}
	for key, dst := range stringVars {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"OT_NUM_LATEST_NEWS": &c.NumLatestNews,
		"BCRYPT_COST":        &c.BcryptCost,
		"PORT":               &c.Port,
	}
	for key, dst := range intVars {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
		*dst = n
	}

	// CACHE_DEFAULT_TIMEOUT is in seconds, matching Flask-Caching
	if v, ok := lookup("CACHE_DEFAULT_TIMEOUT"); ok {
		d, err := parseSecondsOrDuration(v)
		if err != nil {
			return fmt.Errorf("%w: CACHE_DEFAULT_TIMEOUT: %w", ErrInvalid, err)
		}
		c.CacheDefaultTimeout = d
	}
	if v, ok := lookup("SESSION_TTL"); ok {
		d, err := parseSecondsOrDuration(v)
		if err != nil {
			return fmt.Errorf("%w: SESSION_TTL: %w", ErrInvalid, err)
		}
		c.SessionTTL = d
	}
	if v, ok := lookup("SESSION_COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: SESSION_COOKIE_SECURE: %w", ErrInvalid, err)
		}
		c.SessionCookieSecure = b
	}
	return nil
}

func parseSecondsOrDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
