// Package lantern is a small content publishing engine: posts organized in
// categories, persisted in a pluggable document store, and read through a
// caching, retrying query layer tuned for page rendering.
package lantern

import (
	"errors"
	"log/slog"
	"os"

	"github.com/microcosm-cc/bluemonday"
)

// Options configure a Blog. Store is required; everything else has a
// sensible default.
type Options struct {
	// Store is the document database backend. Required.
	Store DocumentStore
	// Cache holds query results. Defaults to an in-memory QueryCache sized
	// from Config.
	Cache Cache
	// Config tunes cache and query behavior. Defaults to DefaultConfig.
	Config *Config
	// Logger receives structured events. Defaults to slog text on stderr.
	Logger *slog.Logger
}

// Blog ties the document store, the query cache, and the resilient executor
// together behind the read and publish operations.
type Blog struct {
	store  DocumentStore
	cache  Cache
	exec   *Executor
	cfg    *Config
	logger *slog.Logger
	policy *bluemonday.Policy
}

// New creates a Blog from the given options and initializes its store.
func New(opts Options) (*Blog, error) {
	if opts.Store == nil {
		return nil, errors.New("lantern: a document store is required")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewQueryCache(cfg.Cache.Capacity, cfg.Cache.TTL.Duration)
	}

	if err := opts.Store.Init(); err != nil {
		return nil, err
	}

	return &Blog{
		store:  opts.Store,
		cache:  cache,
		exec:   NewExecutor(cache, cfg, logger),
		cfg:    cfg,
		logger: logger,
		policy: bluemonday.UGCPolicy(),
	}, nil
}

// Close releases the underlying store.
func (b *Blog) Close() error {
	return b.store.Close()
}

// Config returns the configuration the blog was built with.
func (b *Blog) Config() *Config {
	return b.cfg
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
