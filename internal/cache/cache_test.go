package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pcarrot/internal/dependencies/mocks"
	"github.com/mcoot/pcarrot/internal/testutil"
)

type item struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// backend is a cache under test plus a way to move its notion of time forward
type backend struct {
	name    string
	cache   Cache
	advance func(time.Duration)
}

func backends(t *testing.T) []backend {
	t.Helper()

	simpleClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	fsClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	fsCache, err := NewFileSystem(t.TempDir(), fsClock)
	require.NoError(t, err)

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return []backend{
		{name: TypeSimple, cache: NewSimple(simpleClock, 0), advance: simpleClock.Advance},
		{name: TypeFileSystem, cache: fsCache, advance: fsClock.Advance},
		{name: TypeRedis, cache: NewRedis(client), advance: mini.FastForward},
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			want := []item{{Title: "a", Count: 1}, {Title: "b", Count: 2}}
			require.NoError(t, b.cache.Set(ctx, "k", want, time.Minute))

			var got []item
			hit, err := b.cache.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, want, got)
		})
	}
}

func TestBackendsMiss(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			var got item
			hit, err := b.cache.Get(ctx, "absent", &got)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestBackendsHonourTTL(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.cache.Set(ctx, "k", item{Title: "x"}, 5*time.Minute))

			b.advance(4 * time.Minute)
			var got item
			hit, err := b.cache.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.True(t, hit, "entry should still be live")

			b.advance(2 * time.Minute)
			hit, err = b.cache.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.False(t, hit, "entry should have expired")
		})
	}
}

func TestBackendsNoExpiry(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.cache.Set(ctx, "k", item{Title: "x"}, 0))

			b.advance(1000 * time.Hour)
			var got item
			hit, err := b.cache.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.True(t, hit)
		})
	}
}

func TestBackendsDelete(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.cache.Set(ctx, "k", item{Title: "x"}, time.Minute))
			require.NoError(t, b.cache.Delete(ctx, "k"))
			require.NoError(t, b.cache.Delete(ctx, "k"))

			var got item
			hit, err := b.cache.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NullCache{}

	require.NoError(t, c.Set(ctx, "k", item{Title: "x"}, time.Minute))

	var got item
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestSimpleCacheThreshold(t *testing.T) {
	ctx := context.Background()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	c := NewSimple(clk, 2)

	require.NoError(t, c.Set(ctx, "soon", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "never", 2, 0))
	require.NoError(t, c.Set(ctx, "later", 3, time.Hour))

	assert.Equal(t, 2, c.Len())

	var v int
	hit, _ := c.Get(ctx, "soon", &v)
	assert.False(t, hit, "entry expiring soonest should be evicted")
	hit, _ = c.Get(ctx, "never", &v)
	assert.True(t, hit)
}

func TestSimpleCacheKeepsEntryReplacedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	c := NewSimple(clk, 0)

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	clk.Advance(time.Minute + time.Second)

	// A Get saw the stale entry, then a Set landed before it took the write lock
	require.NoError(t, c.Set(ctx, "k", 2, time.Minute))
	c.deleteIfExpired("k")

	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, v)

	clk.Advance(time.Minute + time.Second)
	c.deleteIfExpired("k")
	assert.Equal(t, 0, c.Len())
}

func TestFileSystemCacheCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileSystem(dir, mocks.NewMockClock(time.Now()))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(c.path("k"), []byte("abc"), 0o644))

	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)

	_, statErr := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileSystemCacheFilesStayInDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileSystem(dir, mocks.NewMockClock(time.Now()))
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "../../escape", 1, time.Minute))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, dir, filepath.Dir(c.path("../../escape")))
}

func TestNewSelectsBackend(t *testing.T) {
	clk := mocks.NewMockClock(time.Now())
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer client.Close()

	cases := []struct {
		typ  string
		want any
	}{
		{TypeNull, NullCache{}},
		{TypeSimple, &SimpleCache{}},
		{TypeFileSystem, &FileSystemCache{}},
		{TypeRedis, &RedisCache{}},
	}

	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			c, err := New(Config{Type: tc.typ, Dir: t.TempDir()}, clk, client)
			require.NoError(t, err)
			assert.IsType(t, tc.want, c)
		})
	}

	_, err := New(Config{Type: "MemcachedCache"}, clk, nil)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = New(Config{Type: TypeRedis}, clk, nil)
	assert.Error(t, err)
}

// Memoize tests

func TestMemoizeLoadsOnceWithinTTL(t *testing.T) {
	ctx := context.Background()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m := NewMemoizer(NewSimple(clk, 0), 5*time.Minute, testutil.NopLogger())

	var calls atomic.Int32
	load := func(context.Context) ([]item, error) {
		calls.Add(1)
		return []item{{Title: "n", Count: int(calls.Load())}}, nil
	}

	first, err := Memoize(ctx, m, "news", load)
	require.NoError(t, err)
	second, err := Memoize(ctx, m, "news", load)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)

	clk.Advance(6 * time.Minute)
	third, err := Memoize(ctx, m, "news", load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, third[0].Count)
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewSimple(mocks.NewMockClock(time.Now()), 0), time.Minute, testutil.NopLogger())

	boom := errors.New("boom")
	_, err := Memoize(ctx, m, "k", func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := Memoize(ctx, m, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMemoizeCoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NullCache{}, time.Minute, testutil.NopLogger())

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}

	const n = 10
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			started.Done()
			v, err := Memoize(ctx, m, "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	started.Wait()
	// Give the goroutines time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(n))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestMemoizeLoadSurvivesCancelledCaller(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	m := NewMemoizer(NewSimple(clk, 0), time.Minute, testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := Memoize(ctx, m, "k", func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	// The value was stored for the next caller
	v, err = Memoize(context.Background(), m, "k", func(context.Context) (int, error) {
		return 0, errors.New("should be cached")
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

// failingCache errors on every operation
type failingCache struct{}

func (failingCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("read failed")
}

func (failingCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("write failed")
}

func (failingCache) Delete(context.Context, string) error {
	return errors.New("delete failed")
}

func TestMemoizeFallsBackWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(failingCache{}, time.Minute, testutil.NopLogger())

	v, err := Memoize(ctx, m, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestMemoizerForget(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewSimple(mocks.NewMockClock(time.Now()), 0), time.Minute, testutil.NopLogger())

	var calls int
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, _ = Memoize(ctx, m, "k", load)
	require.NoError(t, m.Forget(ctx, "k"))
	v, _ := Memoize(ctx, m, "k", load)

	assert.Equal(t, 2, v)
}
