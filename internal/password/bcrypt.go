package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt stores salted bcrypt hashes
type Bcrypt struct {
	cost int
}

// Ensure Bcrypt implements Hasher
var _ Hasher = (*Bcrypt)(nil)

// NewBcrypt creates a bcrypt hasher. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a bcrypt hash of password
func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks password against a bcrypt hash
func (b *Bcrypt) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}

// Salted is true: bcrypt embeds a random salt in every hash
func (b *Bcrypt) Salted() bool {
	return true
}
