// Command lanternd serves the blog over HTTP. It can also batch-import or
// export markdown posts and exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lanternblog/lantern"
	"github.com/lanternblog/lantern/bboltstore"
	"github.com/lanternblog/lantern/handler"
	"github.com/lanternblog/lantern/rediscache"
	"github.com/lanternblog/lantern/sqlitestore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lanternd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file")
	importDir := flag.String("import", "", "import markdown posts from this directory and exit")
	exportDir := flag.String("export", "", "export posts as markdown to this directory and exit")
	flag.Parse()

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := lantern.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if secret := os.Getenv("LANTERN_JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	var cache lantern.Cache
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		cache = rediscache.New(client, cfg.Cache.TTL.Duration, logger)
		logger.Info("using redis query cache", "addr", cfg.Cache.RedisAddr)
	}

	blog, err := lantern.New(lantern.Options{
		Store:  store,
		Cache:  cache,
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer blog.Close()

	if *importDir != "" {
		n, err := blog.ImportDir(context.Background(), *importDir)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d posts\n", n)
		return nil
	}
	if *exportDir != "" {
		n, err := blog.ExportDir(context.Background(), *exportDir)
		if err != nil {
			return err
		}
		fmt.Printf("exported %d posts\n", n)
		return nil
	}

	return serve(cfg, blog, logger)
}

func openStore(cfg *lantern.Config) (lantern.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "bbolt", "":
		return bboltstore.New(cfg.Store.Path), nil
	case "sqlite":
		return sqlitestore.New(cfg.Store.Path), nil
	case "memory":
		return lantern.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func serve(cfg *lantern.Config, blog *lantern.Blog, logger *slog.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	var mailer lantern.Mailer
	if cfg.SMTP.Host != "" {
		mailer = lantern.NewSMTPMailer(cfg.SMTP)
	}

	var assets lantern.AssetHost
	if cfg.Assets.Dir != "" {
		assets = lantern.NewLocalAssetHost(cfg.Assets.Dir, cfg.Assets.BaseURL)
		e.Static(cfg.Assets.BaseURL, cfg.Assets.Dir)
	}

	h := handler.New(handler.Options{
		Blog:   blog,
		Logger: logger,
		Mailer: mailer,
		Assets: assets,
	})

	admin := e.Group("/admin")
	if cfg.Server.JWTSecret == "" {
		return fmt.Errorf("a JWT secret is required to serve the admin surface")
	}
	admin.Use(echojwt.JWT([]byte(cfg.Server.JWTSecret)))
	admin.Use(handler.RequireEditor)

	h.Register(e, admin)

	logger.Info("listening", "addr", cfg.Server.Addr)
	return e.Start(cfg.Server.Addr)
}
