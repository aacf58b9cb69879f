// Package handler exposes the blog over HTTP: a public read surface and a
// JWT-guarded admin surface for publishing.
package handler

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lanternblog/lantern"
)

// Handler serves the HTTP routes over a Blog.
type Handler struct {
	blog     *lantern.Blog
	logger   *slog.Logger
	mailer   lantern.Mailer
	assets   lantern.AssetHost
	pageSize int

	// Cursors never leave the process, so page tokens handed to clients are
	// random handles into this map rather than serialized cursors. Tokens
	// expire with the cache TTL (the underlying data is stale by then
	// anyway) and are pruned on insert, keeping the map bounded.
	mu       sync.Mutex
	cursors  map[string]cursorEntry
	tokenTTL time.Duration
}

type cursorEntry struct {
	cursor  *lantern.Cursor
	addedAt time.Time
}

// Options configure a Handler.
type Options struct {
	Blog   *lantern.Blog
	Logger *slog.Logger
	Mailer lantern.Mailer
	Assets lantern.AssetHost
}

// New creates a Handler. Blog is required; Mailer and Assets may be nil,
// which disables the contact and upload endpoints respectively.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Blog.Config()
	tokenTTL := cfg.Cache.TTL.Duration
	if tokenTTL <= 0 {
		tokenTTL = lantern.DefaultCacheTTL
	}
	return &Handler{
		blog:     opts.Blog,
		logger:   logger,
		mailer:   opts.Mailer,
		assets:   opts.Assets,
		pageSize: cfg.Query.PageSize,
		cursors:  make(map[string]cursorEntry),
		tokenTTL: tokenTTL,
	}
}

// Register mounts the public routes on e and the admin routes on admin.
func (h *Handler) Register(e *echo.Echo, admin *echo.Group) {
	e.GET("/", h.Home)
	e.GET("/posts", h.Posts)
	e.GET("/posts/:slug", h.Post)
	e.GET("/categories/:id", h.Category)
	e.GET("/feed", h.Feed)
	e.GET("/search", h.Search)
	e.GET("/sitemap.xml", h.Sitemap)
	e.POST("/contact", h.Contact)

	admin.POST("/posts", h.CreatePost)
	admin.PUT("/posts/:id", h.UpdatePost)
	admin.DELETE("/posts/:id", h.DeletePost)
	admin.GET("/posts", h.ListPosts)
	admin.POST("/assets", h.UploadAsset)
}

func (h *Handler) limit(c echo.Context) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return h.pageSize
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return h.pageSize
	}
	return limit
}

// tokenFor registers a cursor and returns the opaque token clients use to
// request the next page. Expired tokens are pruned here.
func (h *Handler) tokenFor(cursor *lantern.Cursor) string {
	if cursor == nil {
		return ""
	}
	token := uuid.NewString()
	now := time.Now()

	h.mu.Lock()
	for key, entry := range h.cursors {
		if now.Sub(entry.addedAt) >= h.tokenTTL {
			delete(h.cursors, key)
		}
	}
	h.cursors[token] = cursorEntry{cursor: cursor, addedAt: now}
	h.mu.Unlock()
	return token
}

// cursorFor resolves a page token. Unknown and expired tokens resolve to
// nil, which reads as a first-page request.
func (h *Handler) cursorFor(token string) *lantern.Cursor {
	if token == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.cursors[token]
	if !ok {
		return nil
	}
	if time.Since(entry.addedAt) >= h.tokenTTL {
		delete(h.cursors, token)
		return nil
	}
	return entry.cursor
}
