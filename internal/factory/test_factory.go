package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/dependencies/mocks"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MemoryStore *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies:
// memory storage, in-process cache and sessions, and the legacy SHA1 hasher.
// configure may adjust the settings before anything is wired.
func NewTestApp(configure ...func(*config.Config)) *TestApp {
	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.CacheType = cache.TypeSimple
	settings.SessionBackend = session.BackendMemory
	for _, fn := range configure {
		fn(settings)
	}

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := &App{
		Settings: settings,
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Storage:  store,
		Clock:    mockClock,
		Random:   mockRandom,
	}
	if err := app.wire(); err != nil {
		// Only reachable if the defaults above are invalid
		panic(err)
	}

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MemoryStore: store,
	}
}
