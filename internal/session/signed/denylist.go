package signed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
)

// Denylist remembers the ids of logged out tokens until they would have expired anyway
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryDenylist keeps revoked ids in process. Revocations are lost on restart
// and are not shared between servers.
type MemoryDenylist struct {
	clock clock.Clock

	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ Denylist = (*MemoryDenylist)(nil)

// NewMemoryDenylist creates an empty in-process denylist
func NewMemoryDenylist(clk clock.Clock) *MemoryDenylist {
	return &MemoryDenylist{
		clock:   clk,
		revoked: make(map[string]time.Time),
	}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, until := range d.revoked {
		if clock.Expired(d.clock, until) {
			delete(d.revoked, id)
		}
	}
	d.revoked[tokenID] = d.clock.Now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.revoked[tokenID]
	return ok && !clock.Expired(d.clock, until), nil
}

// Len returns the number of ids held, expired ones included
func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}

const revokedKeyPrefix = "pcarrot:session:revoked"

func revokedKey(tokenID string) string {
	return fmt.Sprintf("%s:%s", revokedKeyPrefix, tokenID)
}

// RedisDenylist stores revoked ids as keys expiring with the token
type RedisDenylist struct {
	client *redis.Client
}

var _ Denylist = (*RedisDenylist)(nil)

// NewRedisDenylist creates a denylist on an existing client
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := d.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (d *RedisDenylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
