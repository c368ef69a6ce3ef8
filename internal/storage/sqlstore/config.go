package sqlstore

import (
	"database/sql"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"

	// Register the sqlite driver
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL backend
type Dialect string

// Supported dialects
const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

const defaultMySQLPort = "3306"

// Config holds database connection settings
type Config struct {
	Dialect Dialect

	// MySQL settings
	Host     string
	User     string
	Password string
	// Name is the database name for MySQL and the file path for SQLite
	// (":memory:" for a private in-memory database)
	Name string

	// Pool settings
	MaxOpenConns int
	MaxIdleConns int
}

// DefaultConfig returns the connection defaults of a stock OpenTibia server
func DefaultConfig() Config {
	return Config{
		Dialect:      DialectMySQL,
		Host:         "localhost",
		User:         "forgotten",
		Password:     "forgotten",
		Name:         "forgotten",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
}

// DSN returns the driver specific data source name
func (c Config) DSN() (string, error) {
	switch c.Dialect {
	case DialectMySQL:
		addr := c.Host
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, defaultMySQLPort)
		}
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = c.Name
		return mc.FormatDSN(), nil
	case DialectSQLite:
		if c.Name == "" {
			return ":memory:", nil
		}
		return c.Name, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", c.Dialect)
	}
}

// Open opens a connection pool and verifies it with a ping
func Open(cfg Config) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(cfg.Dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Dialect == DialectSQLite {
		// A single connection keeps ":memory:" databases shared and
		// serializes writers the way SQLite expects.
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
