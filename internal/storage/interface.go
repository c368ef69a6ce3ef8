package storage

import (
	"context"

	"github.com/mcoot/pcarrot/internal/model"
)

// AccountStore persists account credentials.
// Lookups return model.ErrAccountNotFound when no row matches.
type AccountStore interface {
	FindAccountByName(ctx context.Context, name string) (*model.Account, error)
	FindAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error)
	FindAccountByCredentials(ctx context.Context, name, passwordHash string) (*model.Account, error)

	// InsertAccount returns model.ErrAccountNameTaken if the backend rejects a duplicate name
	InsertAccount(ctx context.Context, name, passwordHash string, createdAt int64) (model.AccountID, error)
	// UpdateAccountPassword reports whether a row was updated
	UpdateAccountPassword(ctx context.Context, id model.AccountID, passwordHash string) (bool, error)
}

// NewsStore persists news items
type NewsStore interface {
	// LatestNews returns at most limit items, most recent first
	LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error)
	InsertNews(ctx context.Context, item model.NewsItem) (int64, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	AccountStore
	NewsStore

	Close() error
}
