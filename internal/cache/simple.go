package cache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
)

type simpleEntry struct {
	data      []byte
	expiresAt time.Time
}

// SimpleCache is an in-process cache. When more than threshold entries are
// held, expired entries are pruned first, then the ones expiring soonest.
type SimpleCache struct {
	clock     clock.Clock
	threshold int

	mu      sync.RWMutex
	entries map[string]simpleEntry
}

// NewSimple creates an in-process cache
func NewSimple(clk clock.Clock, threshold int) *SimpleCache {
	if threshold <= 0 {
		threshold = DefaultConfig().Threshold
	}
	return &SimpleCache{
		clock:     clk,
		threshold: threshold,
		entries:   make(map[string]simpleEntry),
	}
}

func (c *SimpleCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if clock.Expired(c.clock, e.expiresAt) {
		c.deleteIfExpired(key)
		return false, nil
	}

	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// deleteIfExpired removes key unless a Set replaced it since it was read
func (c *SimpleCache) deleteIfExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && clock.Expired(c.clock, e.expiresAt) {
		delete(c.entries, key)
	}
}

func (c *SimpleCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = simpleEntry{data: data, expiresAt: expiresAt}
	if len(c.entries) > c.threshold {
		c.prune()
	}
	return nil
}

func (c *SimpleCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries held, expired ones included
func (c *SimpleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// prune must be called with mu held
func (c *SimpleCache) prune() {
	for key, e := range c.entries {
		if clock.Expired(c.clock, e.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.threshold {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	// Entries without expiry sort last
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.entries[keys[i]].expiresAt, c.entries[keys[j]].expiresAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b)
	})

	for _, key := range keys[:len(keys)-c.threshold] {
		delete(c.entries, key)
	}
}
