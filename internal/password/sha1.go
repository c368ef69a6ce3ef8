package password

import (
	"crypto/sha1" //nolint:gosec // legacy account tables store unsalted SHA1
	"crypto/subtle"
	"encoding/hex"
)

// SHA1 stores passwords as the lowercase hex SHA1 digest of their UTF-8
// bytes, the format OpenTibia servers read from the accounts table.
// It is unsalted and fast; prefer Bcrypt when interop is not needed.
type SHA1 struct{}

// Ensure SHA1 implements Hasher
var _ Hasher = SHA1{}

// Hash returns the hex digest of password
func (SHA1) Hash(password string) (string, error) {
	sum := sha1.Sum([]byte(password)) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}

// Compare compares digests in constant time
func (h SHA1) Compare(hash, password string) error {
	digest, _ := h.Hash(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(hash)) != 1 {
		return ErrMismatch
	}
	return nil
}

// Salted is false: the same password always yields the same digest
func (SHA1) Salted() bool {
	return false
}
