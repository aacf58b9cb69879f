package lantern

import (
	"context"
	"fmt"
	"time"
)

// Cursor marks the position after the last post of a page. Callers should
// treat it as opaque: hold it and hand it back to fetch the next page.
// Cursors are only meaningful against the store instance that produced them
// and are not designed for serialization.
type Cursor struct {
	After   time.Time
	AfterID string
}

// Page is one page of posts plus the cursor for the page after it. A nil
// Cursor means the listing is exhausted.
type Page struct {
	Posts  []*Post
	Cursor *Cursor
}

// FetchPage returns one page of all posts ordered newest first. A nil after
// cursor fetches the first page, which is served through the cache; pages
// addressed by a cursor bypass the cache, since cursor-qualified entries
// would rarely be hit again before expiring.
//
// The next cursor is derived from the last post of the page whenever the
// page came back full. A full final page therefore yields one extra cursor
// whose fetch returns an empty page; that is the expected termination shape.
func (b *Blog) FetchPage(ctx context.Context, limit int, after *Cursor) Page {
	if limit <= 0 {
		limit = b.cfg.Query.PageSize
	}

	cacheKey := ""
	if after == nil {
		cacheKey = fmt.Sprintf("page:%d", limit)
	}

	posts := b.exec.Execute(ctx, cacheKey, func(ctx context.Context) ([]Document, error) {
		return b.store.QueryOrdered(ctx, OrderCreatedAt, limit, after)
	}, ExecOptions{MaxRetries: b.cfg.Query.MaxRetries})

	return Page{Posts: posts, Cursor: nextCursor(posts, limit)}
}

func nextCursor(posts []*Post, limit int) *Cursor {
	if len(posts) < limit || len(posts) == 0 {
		return nil
	}
	last := posts[len(posts)-1]
	return &Cursor{After: last.CreatedAt, AfterID: last.ID}
}
