// Package signed implements stateless sessions: the token itself carries the
// account id, signed with the application secret.
package signed

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/session"
)

// Claims is the token payload
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64 `json:"account_id"`
}

// Store signs and verifies HS256 session tokens. Delete puts the token id on
// a denylist until the token expires, so a logged out token stops working
// even if a copy of it survives.
type Store struct {
	secret   []byte
	clock    clock.Clock
	ttl      time.Duration
	denylist Denylist
}

var _ session.Store = (*Store)(nil)

// New creates a signed session store. A nil denylist keeps revocations in memory.
func New(secret string, clock clock.Clock, ttl time.Duration, denylist Denylist) (*Store, error) {
	if secret == "" {
		return nil, errors.New("signed sessions require a secret key")
	}
	if ttl <= 0 {
		ttl = session.DefaultConfig().TTL
	}
	if denylist == nil {
		denylist = NewMemoryDenylist(clock)
	}
	return &Store{
		secret:   []byte(secret),
		clock:    clock,
		ttl:      ttl,
		denylist: denylist,
	}, nil
}

func (s *Store) Create(_ context.Context, id model.AccountID) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		AccountID: int64(id),
	})

	return token.SignedString(s.secret)
}

func (s *Store) Lookup(ctx context.Context, tokenString string) (model.AccountID, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return 0, session.ErrInvalidSession
	}

	revoked, err := s.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return 0, err
	}
	if revoked {
		return 0, session.ErrInvalidSession
	}

	return model.AccountID(claims.AccountID), nil
}

// Delete revokes the token. Invalid or expired tokens need no revocation.
func (s *Store) Delete(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

func (s *Store) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, session.ErrInvalidSession
	}
	return claims, nil
}
