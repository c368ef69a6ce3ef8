// Package memory keeps sessions in process memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
	"github.com/mcoot/pcarrot/internal/dependencies/random"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/session"
)

const tokenBytes = 32

type entry struct {
	accountID model.AccountID
	expiresAt time.Time
}

// Store is an in-memory session store
type Store struct {
	clock  clock.Clock
	random random.Random
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]entry
}

var _ session.Store = (*Store)(nil)

// New creates a new in-memory session store
func New(clock clock.Clock, random random.Random, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = session.DefaultConfig().TTL
	}
	return &Store{
		clock:    clock,
		random:   random,
		ttl:      ttl,
		sessions: make(map[string]entry),
	}
}

func (s *Store) Create(_ context.Context, id model.AccountID) (string, error) {
	token := s.random.Token(tokenBytes)

	s.mu.Lock()
	s.sessions[token] = entry{
		accountID: id,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *Store) Lookup(_ context.Context, token string) (model.AccountID, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return 0, session.ErrInvalidSession
	}

	if clock.Expired(s.clock, e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return 0, session.ErrInvalidSession
	}

	return e.accountID, nil
}

func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// CleanExpired removes expired sessions (call periodically)
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, e := range s.sessions {
		if clock.Expired(s.clock, e.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
