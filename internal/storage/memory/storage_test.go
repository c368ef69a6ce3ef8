package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pcarrot/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Account tests

func (s *StorageSuite) TestInsertAssignsSequentialIDs() {
	first, err := s.storage.InsertAccount(s.ctx, "alice1", "h1", 1)
	s.Require().NoError(err)
	second, err := s.storage.InsertAccount(s.ctx, "bob1", "h2", 2)
	s.Require().NoError(err)

	s.Equal(model.AccountID(1), first)
	s.Equal(model.AccountID(2), second)
}

func (s *StorageSuite) TestInsertDuplicateName() {
	_, _ = s.storage.InsertAccount(s.ctx, "alice1", "h1", 1)

	_, err := s.storage.InsertAccount(s.ctx, "alice1", "h2", 2)
	s.ErrorIs(err, model.ErrAccountNameTaken)
}

func (s *StorageSuite) TestFindAccountReturnsCopy() {
	id, _ := s.storage.InsertAccount(s.ctx, "alice1", "h1", 1)

	account, err := s.storage.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	account.PasswordHash = "mutated"

	again, _ := s.storage.FindAccountByID(s.ctx, id)
	s.Equal("h1", again.PasswordHash)
}

func (s *StorageSuite) TestFindAccountByCredentials() {
	id, _ := s.storage.InsertAccount(s.ctx, "alice1", "h1", 1)

	account, err := s.storage.FindAccountByCredentials(s.ctx, "alice1", "h1")
	s.Require().NoError(err)
	s.Equal(id, account.ID)

	_, err = s.storage.FindAccountByCredentials(s.ctx, "alice1", "h2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestUpdateAccountPassword() {
	id, _ := s.storage.InsertAccount(s.ctx, "alice1", "h1", 1)

	updated, err := s.storage.UpdateAccountPassword(s.ctx, id, "h2")
	s.Require().NoError(err)
	s.True(updated)

	account, _ := s.storage.FindAccountByName(s.ctx, "alice1")
	s.Equal("h2", account.PasswordHash)

	updated, err = s.storage.UpdateAccountPassword(s.ctx, 99, "h3")
	s.Require().NoError(err)
	s.False(updated)
}

// News tests

func (s *StorageSuite) TestLatestNews() {
	_, _ = s.storage.InsertNews(s.ctx, model.NewsItem{Date: 10, Title: "a"})
	_, _ = s.storage.InsertNews(s.ctx, model.NewsItem{Date: 30, Title: "c"})
	_, _ = s.storage.InsertNews(s.ctx, model.NewsItem{Date: 20, Title: "b"})

	items, err := s.storage.LatestNews(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("c", items[0].Title)
	s.Equal("b", items[1].Title)

	items, err = s.storage.LatestNews(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(items, 3)
}
