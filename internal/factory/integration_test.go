package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/model"
	"github.com/mcoot/pcarrot/internal/password"
	"github.com/mcoot/pcarrot/internal/services/account"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/storage/sqlstore"
	"github.com/mcoot/pcarrot/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Register, authenticate and change password, then open a session for the account
func (s *IntegrationSuite) TestAccountLifecycle() {
	accounts := s.app.AccountService

	id, err := accounts.Register(s.ctx, "alice1", "password123")
	s.Require().NoError(err)
	s.Equal(model.AccountID(1), id)

	got, err := accounts.Authenticate(s.ctx, "alice1", "password123")
	s.Require().NoError(err)
	s.Equal(id, got)

	_, err = accounts.Authenticate(s.ctx, "alice1", "wrongpass")
	s.ErrorIs(err, account.ErrNotFound)

	s.Require().NoError(accounts.ChangePassword(s.ctx, id, "password123", "newpassword1"))
	s.ErrorIs(accounts.ChangePassword(s.ctx, id, "password123", "anything"), account.ErrInvalidCurrentPassword)

	token, err := s.app.Gate.Issue(s.ctx, id)
	s.Require().NoError(err)
	resolved, err := s.app.Gate.Resolve(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(id, resolved)

	stored, err := s.app.MemoryStore.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(s.app.MockClock.Now().Unix(), stored.CreatedAt)
}

// Listings stay stale until the cache timeout passes
func (s *IntegrationSuite) TestNewsCachedUntilTimeout() {
	news := s.app.NewsService

	_, err := news.Post(s.ctx, "Launch", "GM", "server is *up*")
	s.Require().NoError(err)

	items, err := news.Latest(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Contains(items[0].BodyHTML, "<em>up</em>")

	s.app.MockClock.Advance(time.Minute)
	_, err = news.Post(s.ctx, "Patch", "GM", "fixes")
	s.Require().NoError(err)

	items, err = news.Latest(s.ctx, 3)
	s.Require().NoError(err)
	s.Len(items, 1)

	s.app.MockClock.Advance(s.app.Settings.CacheDefaultTimeout)
	items, err = news.Latest(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Patch", items[0].Title)
}

func (s *IntegrationSuite) TestRoutesServeSiteAndAPI() {
	h := s.app.Routes("")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	s.Equal(http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), s.app.Settings.ServerName)
}

func sqliteSettings() *config.Config {
	settings := config.Default()
	settings.StorageType = config.StorageSQL
	settings.DatabaseDriver = string(sqlstore.DialectSQLite)
	settings.DatabaseName = ":memory:"
	settings.CacheType = cache.TypeSimple
	return settings
}

func TestNewWithSQLite(t *testing.T) {
	app, err := New(Config{Settings: sqliteSettings(), Logger: testutil.NopLogger(), InitSchema: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.DB)
	assert.Nil(t, app.Redis)

	ctx := context.Background()
	id, err := app.AccountService.Register(ctx, "alice1", "password123")
	require.NoError(t, err)

	got, err := app.AccountService.Authenticate(ctx, "alice1", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = app.AccountService.Register(ctx, "alice1", "password123")
	assert.ErrorIs(t, err, account.ErrNameInUse)

	// Signed sessions are the default backend
	token, err := app.Gate.Issue(ctx, id)
	require.NoError(t, err)
	resolved, err := app.Gate.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, resolved)

	// Logging out revokes the signed token
	require.NoError(t, app.SessionStore.Delete(ctx, token))
	_, err = app.Gate.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrInvalidSession)

	_, err = app.NewsService.Post(ctx, "Hello", "GM", "# Welcome")
	require.NoError(t, err)
	items, err := app.NewsService.Latest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].BodyHTML, "<h1>Welcome</h1>")
}

func TestNewWithRedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.CacheType = cache.TypeRedis
	settings.SessionBackend = session.BackendRedis
	settings.RedisURL = "redis://" + mr.Addr()

	app, err := New(Config{Settings: settings, Logger: testutil.NopLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.Redis)

	ctx := context.Background()
	id, err := app.AccountService.Register(ctx, "alice1", "password123")
	require.NoError(t, err)

	token, err := app.Gate.Issue(ctx, id)
	require.NoError(t, err)
	assert.True(t, mr.Exists("pcarrot:session:"+token))

	_, err = app.NewsService.Latest(ctx, 3)
	require.NoError(t, err)
	assert.True(t, mr.Exists("pcarrot:cache:news:latest:3"))
}

func TestSignedSessionRevocationsGoToRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.CacheType = cache.TypeRedis
	settings.RedisURL = "redis://" + mr.Addr()

	app, err := New(Config{Settings: settings, Logger: testutil.NopLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	require.Equal(t, session.BackendSigned, app.Settings.SessionBackend)

	ctx := context.Background()
	token, err := app.Gate.Issue(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, app.SessionStore.Delete(ctx, token))

	var revoked int
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "pcarrot:session:revoked:") {
			revoked++
		}
	}
	assert.Equal(t, 1, revoked)

	_, err = app.Gate.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestNewWithBcrypt(t *testing.T) {
	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.CacheType = cache.TypeNull
	settings.PasswordHasher = password.KindBcrypt
	settings.BcryptCost = 4

	app, err := New(Config{Settings: settings})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.True(t, app.Hasher.Salted())

	ctx := context.Background()
	id, err := app.AccountService.Register(ctx, "alice1", "password123")
	require.NoError(t, err)
	got, err := app.AccountService.Authenticate(ctx, "alice1", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	settings := config.Default()
	settings.SessionBackend = "cookie"

	_, err := New(Config{Settings: settings})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.SessionBackend = session.BackendRedis
	settings.RedisURL = "redis://" + addr

	_, err := New(Config{Settings: settings})
	assert.Error(t, err)
}
