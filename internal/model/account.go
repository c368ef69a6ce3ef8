package model

// AccountID uniquely identifies an account. Assigned by the store on insert.
type AccountID int64

// Account is a player's login credential record
type Account struct {
	ID           AccountID
	Name         string // login name (immutable, unique)
	PasswordHash string // never plaintext
	CreatedAt    int64  // unix seconds
}

// Account name and password length limits enforced by the forms
const (
	MinAccountNameLength = 4
	MaxAccountNameLength = 16
	MinPasswordLength    = 8
	MaxPasswordLength    = 32
)
