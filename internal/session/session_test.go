package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pcarrot/internal/dependencies/mocks"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/session/memory"
	"github.com/mcoot/pcarrot/internal/testutil"
)

// brokenStore fails every lookup with a backend error
type brokenStore struct{ session.Store }

func (brokenStore) Lookup(context.Context, string) (model.AccountID, error) {
	return 0, errors.New("backend down")
}

type GateSuite struct {
	suite.Suite
	clock *mocks.MockClock
	store *memory.Store
	gate  *session.Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = memory.New(s.clock, mocks.NewMockRandom(), time.Hour)
	s.gate = session.NewGate(s.store, session.Config{TTL: time.Hour}, testutil.NopLogger())
}

// login performs Gate.Login and returns the cookie it set
func (s *GateSuite) login(id model.AccountID) *http.Cookie {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	s.Require().NoError(s.gate.Login(rec, req, id))

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	return cookies[0]
}

func (s *GateSuite) TestLoginSetsCookie() {
	cookie := s.login(5)

	s.Equal(session.CookieName, cookie.Name)
	s.NotEmpty(cookie.Value)
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookie.SameSite)
	s.Equal(3600, cookie.MaxAge)
	s.Equal("/", cookie.Path)
}

func (s *GateSuite) TestLoadAttachesAccountID() {
	cookie := s.login(5)

	var got model.AccountID
	var ok bool
	handler := s.gate.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = session.AccountID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	s.True(ok)
	s.Equal(model.AccountID(5), got)
}

func (s *GateSuite) TestLoadWithoutCookieIsAnonymous() {
	var ok bool
	handler := s.gate.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = session.AccountID(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	s.False(ok)
}

func (s *GateSuite) TestLoadWithInvalidCookieIsAnonymous() {
	var ok bool
	handler := s.gate.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = session.AccountID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	s.False(ok)
}

func (s *GateSuite) TestRequireAuthenticatedRedirectsAnonymous() {
	called := false
	handler := s.gate.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))

	s.False(called)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *GateSuite) TestRequireAuthenticatedPassesLoggedIn() {
	cookie := s.login(9)

	var got model.AccountID
	handler := s.gate.RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.AccountID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(model.AccountID(9), got)
}

func (s *GateSuite) TestExpiredSessionIsAnonymous() {
	cookie := s.login(9)
	s.clock.Advance(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, ok := s.gate.CurrentAccountID(req)
	s.False(ok)
}

func (s *GateSuite) TestLogoutClearsSession() {
	cookie := s.login(9)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Require().NoError(s.gate.Logout(rec, req))

	cleared := rec.Result().Cookies()
	s.Require().Len(cleared, 1)
	s.Equal(session.CookieName, cleared[0].Name)
	s.Empty(cleared[0].Value)
	s.Less(cleared[0].MaxAge, 0)

	// A client that kept the old cookie is still anonymous
	next := httptest.NewRequest(http.MethodGet, "/account", nil)
	next.AddCookie(cookie)
	_, ok := s.gate.CurrentAccountID(next)
	s.False(ok)
}

func (s *GateSuite) TestLogoutWithoutSession() {
	rec := httptest.NewRecorder()
	s.NoError(s.gate.Logout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil)))
	s.Len(rec.Result().Cookies(), 1)
}

func (s *GateSuite) TestIssueAndResolve() {
	ctx := context.Background()

	token, err := s.gate.Issue(ctx, 4)
	s.Require().NoError(err)

	id, err := s.gate.Resolve(ctx, token)
	s.Require().NoError(err)
	s.Equal(model.AccountID(4), id)

	_, err = s.gate.Resolve(ctx, "")
	s.ErrorIs(err, session.ErrInvalidSession)
}

func (s *GateSuite) TestStoreFailureIsAnonymous() {
	gate := session.NewGate(brokenStore{}, session.DefaultConfig(), testutil.NopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "anything"})

	_, ok := gate.CurrentAccountID(req)
	s.False(ok)
}

func (s *GateSuite) TestWithAccountID() {
	ctx := session.WithAccountID(context.Background(), 11)

	id, ok := session.AccountID(ctx)
	s.True(ok)
	s.Equal(model.AccountID(11), id)

	_, ok = session.AccountID(context.Background())
	s.False(ok)
}
