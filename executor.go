package lantern

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// QueryFunc issues a single store query. It must honor ctx cancellation
// where the underlying store client supports it.
type QueryFunc func(ctx context.Context) ([]Document, error)

// ExecOptions control a single Execute call.
type ExecOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	// Ignored in low-latency mode, which never retries.
	MaxRetries int
	// LowLatency trades resilience for bounded latency: a shorter timeout
	// budget and a single attempt. Meant for first-paint and
	// server-rendering contexts where a retry loop would block the page.
	LowLatency bool
}

// Executor is the single choke point for all read queries. It layers the
// cache lookup, the timeout race, the retry/backoff loop, and the
// stale-or-empty degradation over a raw QueryFunc, so caching and
// resilience policy is defined exactly once.
type Executor struct {
	cache   Cache
	logger  *slog.Logger
	timeout time.Duration // interactive budget
	paint   time.Duration // low-latency budget
	backoff time.Duration // backoff base; wait is base * 2^(attempt-1)

	mu       sync.Mutex
	inflight map[string]*inflightFetch
}

type inflightFetch struct {
	done  chan struct{}
	posts []*Post
}

// NewExecutor creates an Executor over the given cache.
func NewExecutor(cache Cache, cfg *Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Executor{
		cache:    cache,
		logger:   logger,
		timeout:  cfg.Query.Timeout.Duration,
		paint:    cfg.Query.FirstPaintTimeout.Duration,
		backoff:  cfg.Query.BackoffBase.Duration,
		inflight: make(map[string]*inflightFetch),
	}
}

// Execute runs fn behind the cache entry named by cacheKey. Callers always
// receive a usable slice: on a fresh cache hit the cached posts, on success
// the normalized query result, and on exhaustion of all attempts the stale
// cache entry if one is resident, or an empty slice. Failures are logged,
// never returned. An empty cacheKey disables caching and request collapsing
// for the call (used for cursor-qualified pages).
//
// Concurrent calls for the same cold key collapse into one underlying
// fetch; the late arrivals wait for the first caller's result instead of
// issuing duplicates.
func (e *Executor) Execute(ctx context.Context, cacheKey string, fn QueryFunc, opts ExecOptions) []*Post {
	if cacheKey == "" {
		return e.fetch(ctx, cacheKey, fn, opts)
	}

	if posts, fresh, ok := e.cache.GetStale(cacheKey); ok && fresh {
		return posts
	}

	e.mu.Lock()
	if flight, ok := e.inflight[cacheKey]; ok {
		e.mu.Unlock()
		select {
		case <-flight.done:
			return flight.posts
		case <-ctx.Done():
			return []*Post{}
		}
	}
	flight := &inflightFetch{done: make(chan struct{})}
	e.inflight[cacheKey] = flight
	e.mu.Unlock()

	posts := e.fetch(ctx, cacheKey, fn, opts)

	e.mu.Lock()
	delete(e.inflight, cacheKey)
	e.mu.Unlock()

	flight.posts = posts
	close(flight.done)
	return posts
}

func (e *Executor) fetch(ctx context.Context, cacheKey string, fn QueryFunc, opts ExecOptions) []*Post {
	budget := e.timeout
	attempts := opts.MaxRetries + 1
	if opts.LowLatency {
		budget = e.paint
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if !e.wait(ctx, e.backoff*(1<<(attempt-1))) {
				break
			}
		}

		docs, err := e.attempt(ctx, budget, fn)
		if err == nil {
			posts := normalizePosts(docs)
			if cacheKey != "" {
				e.cache.Set(cacheKey, posts)
			}
			return posts
		}

		if errors.Is(err, ErrInvalidQuery) {
			// Implementer bug, not a runtime condition: retrying cannot help.
			e.logger.Error("query contract violation",
				slog.String("key", cacheKey),
				slog.String("error", err.Error()))
			return []*Post{}
		}

		e.logger.Warn("query attempt failed",
			slog.String("key", cacheKey),
			slog.Int("attempt", attempt+1),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()))
	}

	if cacheKey != "" {
		if posts, _, ok := e.cache.GetStale(cacheKey); ok {
			e.logger.Warn("query exhausted all attempts, serving stale cache entry",
				slog.String("key", cacheKey))
			return posts
		}
	}

	e.logger.Error("query exhausted all attempts, returning empty result",
		slog.String("key", cacheKey))
	return []*Post{}
}

// attempt races fn against the timeout budget. The context is cancelled on
// timeout so store clients that support cancellation stop doing work; a
// client that ignores it merely has its eventual result discarded.
func (e *Executor) attempt(ctx context.Context, budget time.Duration, fn QueryFunc) ([]Document, error) {
	qctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		docs []Document
		err  error
	}
	results := make(chan outcome, 1)
	go func() {
		docs, err := fn(qctx)
		results <- outcome{docs: docs, err: err}
	}()

	select {
	case out := <-results:
		return out.docs, out.err
	case <-qctx.Done():
		return nil, qctx.Err()
	}
}

func (e *Executor) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
