// Package password provides the password hashing strategies accounts can be
// stored with.
package password

import (
	"errors"
	"fmt"
)

// ErrMismatch is returned by Compare when a password does not match a hash
var ErrMismatch = errors.New("password does not match")

// Hasher kinds recognised by New
const (
	KindSHA1   = "sha1"
	KindBcrypt = "bcrypt"
)

// Hasher hashes and verifies passwords
type Hasher interface {
	// Hash returns the stored representation of password
	Hash(password string) (string, error)
	// Compare returns nil if password matches hash, ErrMismatch otherwise
	Compare(hash, password string) error
	// Salted reports whether equal passwords can produce different hashes.
	// Unsalted hashes can be looked up by equality in storage.
	Salted() bool
}

// New returns the hasher for kind. cost is only used by bcrypt.
func New(kind string, cost int) (Hasher, error) {
	switch kind {
	case KindSHA1, "":
		return SHA1{}, nil
	case KindBcrypt:
		return NewBcrypt(cost), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}
