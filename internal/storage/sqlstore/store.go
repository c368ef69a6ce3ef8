package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/storage"
)

// mysqlDuplicateEntry is the server error number for a unique key violation
const mysqlDuplicateEntry = 1062

const (
	selectAccountColumns = "SELECT `id`, `name`, `password`, `creation` FROM `accounts`"

	queryAccountByName        = selectAccountColumns + " WHERE `name` = ?"
	queryAccountByID          = selectAccountColumns + " WHERE `id` = ?"
	queryAccountByCredentials = selectAccountColumns + " WHERE `name` = ? AND `password` = ?"

	insertAccount         = "INSERT INTO `accounts` (`name`, `password`, `creation`) VALUES (?, ?, ?)"
	updateAccountPassword = "UPDATE `accounts` SET `password` = ? WHERE `id` = ?"

	queryLatestNews = "SELECT `id`, `date`, `title`, `author`, `body` FROM `pcarrot_news` ORDER BY `date` DESC LIMIT ?"
	insertNews      = "INSERT INTO `pcarrot_news` (`date`, `title`, `author`, `body`) VALUES (?, ?, ?, ?)"
)

// Store is a database/sql implementation of the storage interface.
// Every operation is a single statement; connections are taken from the
// pool for the duration of that statement and always returned.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database handle
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Account operations

func (s *Store) FindAccountByName(ctx context.Context, name string) (*model.Account, error) {
	return s.queryAccount(ctx, queryAccountByName, name)
}

func (s *Store) FindAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.queryAccount(ctx, queryAccountByID, int64(id))
}

func (s *Store) FindAccountByCredentials(ctx context.Context, name, passwordHash string) (*model.Account, error) {
	return s.queryAccount(ctx, queryAccountByCredentials, name, passwordHash)
}

func (s *Store) queryAccount(ctx context.Context, query string, args ...any) (*model.Account, error) {
	var account model.Account
	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &account.Name, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	account.ID = model.AccountID(id)
	return &account, nil
}

func (s *Store) InsertAccount(ctx context.Context, name, passwordHash string, createdAt int64) (model.AccountID, error) {
	result, err := s.db.ExecContext(ctx, insertAccount, name, passwordHash, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrAccountNameTaken
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return model.AccountID(id), nil
}

func (s *Store) UpdateAccountPassword(ctx context.Context, id model.AccountID, passwordHash string) (bool, error) {
	result, err := s.db.ExecContext(ctx, updateAccountPassword, passwordHash, int64(id))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// News operations

func (s *Store) LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	if limit <= 0 {
		return []model.NewsItem{}, nil
	}

	rows, err := s.db.QueryContext(ctx, queryLatestNews, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.NewsItem, 0, limit)
	for rows.Next() {
		var item model.NewsItem
		if err := rows.Scan(&item.ID, &item.Date, &item.Title, &item.Author, &item.Body); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (s *Store) InsertNews(ctx context.Context, item model.NewsItem) (int64, error) {
	result, err := s.db.ExecContext(ctx, insertNews, item.Date, item.Title, item.Author, item.Body)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	// modernc.org/sqlite reports constraint failures through the message text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
