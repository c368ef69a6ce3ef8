package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/pcarrot/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued tokens are returned first; once exhausted it falls back to a
// deterministic counter so tokens stay unique.
type MockRandom struct {
	mu sync.Mutex

	TokenResults []string
	tokenIndex   int
	counter      int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued token, or a counter based token if none remain
func (r *MockRandom) Token(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return result
	}
	r.counter++
	return fmt.Sprintf("token-%d", r.counter)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = nil
	r.tokenIndex = 0
	r.counter = 0
}
