package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountNameTaken = errors.New("account name already taken")
)
