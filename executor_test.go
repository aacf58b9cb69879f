package lantern

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Query.Timeout = Duration{time.Second}
	cfg.Query.FirstPaintTimeout = Duration{100 * time.Millisecond}
	cfg.Query.BackoffBase = Duration{time.Millisecond}
	return cfg
}

func newTestExecutor(t *testing.T) (*Executor, *QueryCache) {
	t.Helper()
	cache := NewQueryCache(10, time.Minute)
	return NewExecutor(cache, testConfig(), testLogger()), cache
}

func docsFor(ids ...string) []Document {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, NewDocument(id, map[string]any{"title": "Post " + id}))
	}
	return docs
}

func TestExecuteCachesResult(t *testing.T) {
	exec, _ := newTestExecutor(t)

	calls := 0
	fn := func(ctx context.Context) ([]Document, error) {
		calls++
		return docsFor("a", "b"), nil
	}

	first := exec.Execute(context.Background(), "key", fn, ExecOptions{})
	second := exec.Execute(context.Background(), "key", fn, ExecOptions{})

	assert.Equal(t, 1, calls, "second call must be served from cache")
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec, _ := newTestExecutor(t)

	calls := 0
	fn := func(ctx context.Context) ([]Document, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient store failure")
		}
		return docsFor("a"), nil
	}

	posts := exec.Execute(context.Background(), "key", fn, ExecOptions{MaxRetries: 2})

	assert.Equal(t, 3, calls)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)
}

func TestExecuteLowLatencyNeverRetries(t *testing.T) {
	exec, _ := newTestExecutor(t)

	calls := 0
	fn := func(ctx context.Context) ([]Document, error) {
		calls++
		return nil, errors.New("store down")
	}

	posts := exec.Execute(context.Background(), "key", fn, ExecOptions{MaxRetries: 5, LowLatency: true})

	assert.Equal(t, 1, calls, "low-latency mode issues exactly one attempt")
	assert.Empty(t, posts)
	assert.NotNil(t, posts, "degraded result is an empty slice, never nil")
}

func TestExecuteFallsBackToStaleEntry(t *testing.T) {
	cache := NewQueryCache(10, 10*time.Millisecond)
	exec := NewExecutor(cache, testConfig(), testLogger())

	good := func(ctx context.Context) ([]Document, error) {
		return docsFor("a"), nil
	}
	posts := exec.Execute(context.Background(), "key", good, ExecOptions{})
	require.Len(t, posts, 1)

	time.Sleep(20 * time.Millisecond)

	bad := func(ctx context.Context) ([]Document, error) {
		return nil, errors.New("store down")
	}
	stale := exec.Execute(context.Background(), "key", bad, ExecOptions{})

	require.Len(t, stale, 1, "an expired entry still serves when the store is down")
	assert.Equal(t, "a", stale[0].ID)
}

func TestExecuteEmptyWhenNothingCached(t *testing.T) {
	exec, _ := newTestExecutor(t)

	posts := exec.Execute(context.Background(), "key", func(ctx context.Context) ([]Document, error) {
		return nil, errors.New("store down")
	}, ExecOptions{MaxRetries: 1})

	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestExecuteInvalidQueryAbortsRetries(t *testing.T) {
	exec, _ := newTestExecutor(t)

	calls := 0
	posts := exec.Execute(context.Background(), "key", func(ctx context.Context) ([]Document, error) {
		calls++
		return nil, ValidateQuery("nonsense", OrderCreatedAt, 10)
	}, ExecOptions{MaxRetries: 5})

	assert.Equal(t, 1, calls, "a contract violation must not be retried")
	assert.Empty(t, posts)
}

func TestExecuteTimesOutHungQuery(t *testing.T) {
	cache := NewQueryCache(10, time.Minute)
	cfg := testConfig()
	cfg.Query.Timeout = Duration{20 * time.Millisecond}
	exec := NewExecutor(cache, cfg, testLogger())

	start := time.Now()
	posts := exec.Execute(context.Background(), "key", func(ctx context.Context) ([]Document, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, ExecOptions{})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, posts)
}

func TestExecuteCollapsesConcurrentFetches(t *testing.T) {
	exec, _ := newTestExecutor(t)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(ctx context.Context) ([]Document, error) {
		calls.Add(1)
		<-release
		return docsFor("a"), nil
	}

	const waiters = 5
	var wg sync.WaitGroup
	results := make([][]*Post, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = exec.Execute(context.Background(), "key", fn, ExecOptions{})
		}(i)
	}

	// Let the goroutines pile up on the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent cold reads must collapse into one fetch")
	for i := 0; i < waiters; i++ {
		require.Len(t, results[i], 1)
		assert.Equal(t, "a", results[i][0].ID)
	}
}

func TestExecuteUncachedKeyBypassesCache(t *testing.T) {
	exec, cache := newTestExecutor(t)

	calls := 0
	fn := func(ctx context.Context) ([]Document, error) {
		calls++
		return docsFor("a"), nil
	}

	exec.Execute(context.Background(), "", fn, ExecOptions{})
	exec.Execute(context.Background(), "", fn, ExecOptions{})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cache.Len())
}
