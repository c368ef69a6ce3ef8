package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Random provides random token generation that can be mocked for testing
type Random interface {
	// Token returns a URL-safe random string built from n random bytes
	Token(n int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token returns a base64url encoded string of n cryptographically random bytes
func (r *CryptoRandom) Token(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
