package lantern

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from a TOML string such as
// "90s" or "3m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration surface, loadable from a TOML file.
type Config struct {
	Cache      CacheConfig  `toml:"cache"`
	Query      QueryConfig  `toml:"query"`
	Server     ServerConfig `toml:"server"`
	Store      StoreConfig  `toml:"store"`
	SMTP       SMTPConfig   `toml:"smtp"`
	Assets     AssetsConfig `toml:"assets"`
	Categories Categories   `toml:"categories"`
}

// CacheConfig bounds the query cache.
type CacheConfig struct {
	Capacity int      `toml:"capacity"`
	TTL      Duration `toml:"ttl"`
	// RedisAddr, when set, swaps the in-process cache for Redis.
	RedisAddr string `toml:"redis_addr"`
}

// QueryConfig tunes the read path.
type QueryConfig struct {
	// Timeout bounds a single interactive query attempt.
	Timeout Duration `toml:"timeout"`
	// FirstPaintTimeout bounds the single attempt of a low-latency query.
	FirstPaintTimeout Duration `toml:"first_paint_timeout"`
	// MaxRetries is the retry count after the first attempt.
	MaxRetries int `toml:"max_retries"`
	// BackoffBase is the wait before the first retry; it doubles per retry.
	BackoffBase Duration `toml:"backoff_base"`
	// FanoutBatch caps concurrent per-category queries during fan-out.
	FanoutBatch int `toml:"fanout_batch"`
	// SearchWindow is how many recent posts a search scans.
	SearchWindow int `toml:"search_window"`
	// PageSize is the default listing page length.
	PageSize int `toml:"page_size"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`
}

// StoreConfig selects and locates the document store backend.
type StoreConfig struct {
	// Backend is one of "bbolt", "sqlite", or "memory".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// SMTPConfig configures outbound mail for the contact form.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// AssetsConfig configures uploaded image storage.
type AssetsConfig struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"base_url"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Capacity: DefaultCacheCapacity,
			TTL:      Duration{DefaultCacheTTL},
		},
		Query: QueryConfig{
			Timeout:           Duration{15 * time.Second},
			FirstPaintTimeout: Duration{8 * time.Second},
			MaxRetries:        2,
			BackoffBase:       Duration{500 * time.Millisecond},
			FanoutBatch:       3,
			SearchWindow:      50,
			PageSize:          10,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Backend: "bbolt",
			Path:    "lantern.db",
		},
		Assets: AssetsConfig{
			Dir:     "assets",
			BaseURL: "/assets",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing path returns the
// defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}
	return cfg, nil
}
