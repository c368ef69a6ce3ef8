package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("5m") or a number of seconds
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value * float64(time.Second)))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	default:
		return errors.New("duration must be a string or a number of seconds")
	}
}

// fileConfig is the JSON file layout. Absent keys leave the current value alone.
type fileConfig struct {
	ServerName        *string `json:"server_name"`
	ServerDescription *string `json:"server_description"`
	NumLatestNews     *int    `json:"num_latest_news"`

	StorageType      *string `json:"storage_type"`
	DatabaseDriver   *string `json:"database_driver"`
	DatabaseHost     *string `json:"database_host"`
	DatabaseUser     *string `json:"database_user"`
	DatabasePassword *string `json:"database_password"`
	DatabaseName     *string `json:"database_name"`

	CacheType           *string   `json:"cache_type"`
	CacheDir            *string   `json:"cache_dir"`
	CacheDefaultTimeout *Duration `json:"cache_default_timeout"`

	SecretKey      *string   `json:"secret_key"`
	SessionBackend *string   `json:"session_backend"`
	SessionTTL     *Duration `json:"session_ttl"`

	SessionCookieSecure *bool `json:"session_cookie_secure"`

	PasswordHasher *string `json:"password_hasher"`
	BcryptCost     *int    `json:"bcrypt_cost"`

	RedisURL *string `json:"redis_url"`

	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	LogLevel *string `json:"log_level"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.ServerName, f.ServerName)
	setString(&c.ServerDescription, f.ServerDescription)
	setInt(&c.NumLatestNews, f.NumLatestNews)

	setString(&c.StorageType, f.StorageType)
	setString(&c.DatabaseDriver, f.DatabaseDriver)
	setString(&c.DatabaseHost, f.DatabaseHost)
	setString(&c.DatabaseUser, f.DatabaseUser)
	setString(&c.DatabasePassword, f.DatabasePassword)
	setString(&c.DatabaseName, f.DatabaseName)

	setString(&c.CacheType, f.CacheType)
	setString(&c.CacheDir, f.CacheDir)
	setDuration(&c.CacheDefaultTimeout, f.CacheDefaultTimeout)

	setString(&c.SecretKey, f.SecretKey)
	setString(&c.SessionBackend, f.SessionBackend)
	setDuration(&c.SessionTTL, f.SessionTTL)
	if f.SessionCookieSecure != nil {
		c.SessionCookieSecure = *f.SessionCookieSecure
	}

	setString(&c.PasswordHasher, f.PasswordHasher)
	setInt(&c.BcryptCost, f.BcryptCost)

	setString(&c.RedisURL, f.RedisURL)

	setString(&c.Host, f.Host)
	setInt(&c.Port, f.Port)
	setString(&c.LogLevel, f.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = time.Duration(*v)
	}
}
