package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/password"
	"github.com/mcoot/pcarrot/internal/storage"
)

// Errors
var (
	ErrNameInUse              = errors.New("account name already in use")
	ErrNotFound               = errors.New("invalid account name or password")
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	ErrSamePassword           = errors.New("new password equals current password")

	// ErrUnexpected wraps every storage or hashing failure
	ErrUnexpected = errors.New("unexpected account error")
)

// Service implements the account credential lifecycle
type Service struct {
	store  storage.AccountStore
	hasher password.Hasher
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new account Service
func New(store storage.AccountStore, hasher password.Hasher, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		clock:  clock,
		logger: logger,
	}
}

// Register creates an account and returns its id
func (s *Service) Register(ctx context.Context, name, plaintext string) (model.AccountID, error) {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return 0, s.unexpected(ctx, "hash password", err)
	}

	_, err = s.store.FindAccountByName(ctx, name)
	if err == nil {
		return 0, ErrNameInUse
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return 0, s.unexpected(ctx, "find account by name", err)
	}

	id, err := s.store.InsertAccount(ctx, name, hash, clock.Unix(s.clock))
	if err != nil {
		// Lost a race with a concurrent registration of the same name
		if errors.Is(err, model.ErrAccountNameTaken) {
			return 0, ErrNameInUse
		}
		return 0, s.unexpected(ctx, "insert account", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.Int64("account_id", int64(id)),
		slog.String("name", name),
	)
	return id, nil
}

// Authenticate returns the id of the account matching the credentials.
// Unknown names and wrong passwords both yield ErrNotFound.
func (s *Service) Authenticate(ctx context.Context, name, plaintext string) (model.AccountID, error) {
	if !s.hasher.Salted() {
		hash, err := s.hasher.Hash(plaintext)
		if err != nil {
			return 0, s.unexpected(ctx, "hash password", err)
		}

		account, err := s.store.FindAccountByCredentials(ctx, name, hash)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return 0, ErrNotFound
			}
			return 0, s.unexpected(ctx, "find account by credentials", err)
		}
		return account.ID, nil
	}

	account, err := s.store.FindAccountByName(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return 0, ErrNotFound
		}
		return 0, s.unexpected(ctx, "find account by name", err)
	}

	if !s.matches(ctx, account, plaintext) {
		return 0, ErrNotFound
	}
	return account.ID, nil
}

// ChangePassword replaces the password of an account after verifying the
// current one. Calling it again with the same arguments fails with
// ErrInvalidCurrentPassword because the stored hash has changed.
func (s *Service) ChangePassword(ctx context.Context, id model.AccountID, oldPlaintext, newPlaintext string) error {
	same, err := s.samePassword(oldPlaintext, newPlaintext)
	if err != nil {
		return s.unexpected(ctx, "hash password", err)
	}
	if same {
		return ErrSamePassword
	}

	account, err := s.store.FindAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return ErrInvalidCurrentPassword
		}
		return s.unexpected(ctx, "find account by id", err)
	}

	if !s.matches(ctx, account, oldPlaintext) {
		return ErrInvalidCurrentPassword
	}

	newHash, err := s.hasher.Hash(newPlaintext)
	if err != nil {
		return s.unexpected(ctx, "hash password", err)
	}

	updated, err := s.store.UpdateAccountPassword(ctx, id, newHash)
	if err != nil {
		return s.unexpected(ctx, "update account password", err)
	}
	if !updated {
		// Account disappeared between the check and the update
		return ErrInvalidCurrentPassword
	}

	s.logger.InfoContext(ctx, "account password changed", slog.Int64("account_id", int64(id)))
	return nil
}

// samePassword compares two plaintexts the way their stored hashes would
// compare. Salted hashes of equal passwords differ, so those compare as text.
func (s *Service) samePassword(a, b string) (bool, error) {
	if s.hasher.Salted() {
		return a == b, nil
	}
	hashA, err := s.hasher.Hash(a)
	if err != nil {
		return false, err
	}
	hashB, err := s.hasher.Hash(b)
	if err != nil {
		return false, err
	}
	return hashA == hashB, nil
}

func (s *Service) matches(ctx context.Context, account *model.Account, plaintext string) bool {
	err := s.hasher.Compare(account.PasswordHash, plaintext)
	if err == nil {
		return true
	}
	if !errors.Is(err, password.ErrMismatch) {
		s.logger.WarnContext(ctx, "stored password hash unreadable by configured hasher",
			slog.Int64("account_id", int64(account.ID)),
			slog.String("error", err.Error()),
		)
	}
	return false
}

func (s *Service) unexpected(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "account operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s: %w", ErrUnexpected, op, err)
}
