package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts  map[model.AccountID]*model.Account
	nameIndex map[string]model.AccountID
	nextID    model.AccountID

	news       []model.NewsItem
	nextNewsID int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:  make(map[model.AccountID]*model.Account),
		nameIndex: make(map[string]model.AccountID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Account operations

func (s *Storage) FindAccountByName(ctx context.Context, name string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.copyAccount(id), nil
}

func (s *Storage) FindAccountByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[id]; !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.copyAccount(id), nil
}

func (s *Storage) FindAccountByCredentials(ctx context.Context, name, passwordHash string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok || s.accounts[id].PasswordHash != passwordHash {
		return nil, model.ErrAccountNotFound
	}
	return s.copyAccount(id), nil
}

func (s *Storage) InsertAccount(ctx context.Context, name, passwordHash string, createdAt int64) (model.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nameIndex[name]; exists {
		return 0, model.ErrAccountNameTaken
	}
	s.nextID++
	id := s.nextID
	s.accounts[id] = &model.Account{
		ID:           id,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	s.nameIndex[name] = id
	return id, nil
}

func (s *Storage) UpdateAccountPassword(ctx context.Context, id model.AccountID, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return false, nil
	}
	account.PasswordHash = passwordHash
	return true, nil
}

// copyAccount returns a detached copy so callers cannot mutate stored rows.
// Caller must hold the lock.
func (s *Storage) copyAccount(id model.AccountID) *model.Account {
	account := *s.accounts[id]
	return &account
}

// News operations

func (s *Storage) LatestNews(ctx context.Context, limit int) ([]model.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.NewsItem, len(s.news))
	copy(items, s.news)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})

	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Storage) InsertNews(ctx context.Context, item model.NewsItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNewsID++
	item.ID = s.nextNewsID
	item.BodyHTML = ""
	s.news = append(s.news, item)
	return item.ID, nil
}
