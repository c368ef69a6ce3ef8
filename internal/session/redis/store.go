// Package redis keeps sessions in redis so they survive restarts and can be
// shared between server processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/pcarrot/internal/dependencies/random"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/session"
)

const (
	keyPrefix  = "pcarrot:session"
	tokenBytes = 32
)

func sessionKey(token string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, token)
}

// Store is a Redis-backed session store. Expiry is delegated to key TTLs.
type Store struct {
	client *redis.Client
	random random.Random
	ttl    time.Duration
}

var _ session.Store = (*Store)(nil)

// NewWithClient creates a session store using an existing client
func NewWithClient(client *redis.Client, random random.Random, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = session.DefaultConfig().TTL
	}
	return &Store{
		client: client,
		random: random,
		ttl:    ttl,
	}
}

func (s *Store) Create(ctx context.Context, id model.AccountID) (string, error) {
	token := s.random.Token(tokenBytes)

	ok, err := s.client.SetNX(ctx, sessionKey(token), int64(id), s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("create session: token collision")
	}

	return token, nil
}

func (s *Store) Lookup(ctx context.Context, token string) (model.AccountID, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, session.ErrInvalidSession
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, session.ErrInvalidSession
	}
	return model.AccountID(id), nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
