package lantern

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// PostsByCategory returns up to limit posts filed under categoryID, newest
// first. Results are cached per category and limit.
func (b *Blog) PostsByCategory(ctx context.Context, categoryID string, limit int) []*Post {
	if limit <= 0 {
		limit = b.cfg.Query.PageSize
	}
	key := fmt.Sprintf("category:%s:%d", categoryID, limit)
	return b.exec.Execute(ctx, key, func(ctx context.Context) ([]Document, error) {
		return b.store.QueryByEquality(ctx, FieldCategoryID, categoryID, OrderCreatedAt, limit)
	}, ExecOptions{MaxRetries: b.cfg.Query.MaxRetries})
}

// AllPosts returns up to limit posts across all categories, newest first.
func (b *Blog) AllPosts(ctx context.Context, limit int) []*Post {
	return b.allPosts(ctx, limit, ExecOptions{MaxRetries: b.cfg.Query.MaxRetries})
}

// RecentPosts is AllPosts under the low-latency budget: one attempt, short
// timeout, no retries. Meant for front-page rendering where a degraded empty
// result beats a blocked response. It shares the AllPosts cache entries, so
// a warm key answers either call.
func (b *Blog) RecentPosts(ctx context.Context, limit int) []*Post {
	return b.allPosts(ctx, limit, ExecOptions{LowLatency: true})
}

func (b *Blog) allPosts(ctx context.Context, limit int, opts ExecOptions) []*Post {
	if limit <= 0 {
		limit = b.cfg.Query.PageSize
	}
	key := fmt.Sprintf("all:%d", limit)
	return b.exec.Execute(ctx, key, func(ctx context.Context) ([]Document, error) {
		return b.store.QueryOrdered(ctx, OrderCreatedAt, limit, nil)
	}, opts)
}

// PostBySlug resolves a post by its slug, falling back to a direct key
// lookup so legacy ID-shaped links keep working. Returns nil when nothing
// matches; absence is a normal outcome, not an error.
func (b *Blog) PostBySlug(ctx context.Context, slugOrID string) *Post {
	if slugOrID == "" {
		return nil
	}
	key := "post:" + slugOrID
	posts := b.exec.Execute(ctx, key, func(ctx context.Context) ([]Document, error) {
		docs, err := b.store.QueryByEquality(ctx, FieldSlug, slugOrID, OrderCreatedAt, 1)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			return docs, nil
		}
		doc, err := b.store.GetByKey(ctx, slugOrID)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}, ExecOptions{MaxRetries: b.cfg.Query.MaxRetries})

	if len(posts) == 0 {
		return nil
	}
	return posts[0]
}

// PostsByCategories fans one logical query out across several categories and
// merges the results into a single recency-ordered slice of at most limit
// posts. The per-category share is the ceiling of limit over the category
// count, so the merged pool is large enough even when one category dominates.
//
// Fan-out runs in bounded concurrent batches. Each leg is independently
// resilient, so a category whose query exhausts its attempts contributes
// nothing rather than failing the merge.
func (b *Blog) PostsByCategories(ctx context.Context, categoryIDs []string, limit int) []*Post {
	if len(categoryIDs) == 0 {
		return []*Post{}
	}
	if limit <= 0 {
		limit = b.cfg.Query.PageSize
	}

	perCategory := (limit + len(categoryIDs) - 1) / len(categoryIDs)
	batchSize := b.cfg.Query.FanoutBatch
	if batchSize <= 0 {
		batchSize = 1
	}

	var mu sync.Mutex
	merged := make([]*Post, 0, limit)

	for start := 0; start < len(categoryIDs); start += batchSize {
		end := start + batchSize
		if end > len(categoryIDs) {
			end = len(categoryIDs)
		}

		var wg sync.WaitGroup
		for _, id := range categoryIDs[start:end] {
			wg.Add(1)
			go func(categoryID string) {
				defer wg.Done()
				posts := b.PostsByCategory(ctx, categoryID, perCategory)
				mu.Lock()
				merged = append(merged, posts...)
				mu.Unlock()
			}(id)
		}
		wg.Wait()
	}

	SortByRecency(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Search returns up to limit posts whose title, body text, or category
// contains the query, case-insensitively. It is a linear scan over a bounded
// window of recent posts, not an index lookup: matches older than the window
// are simply not found, and ranking is recency, not relevance.
func (b *Blog) Search(ctx context.Context, query string, limit int) []*Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Post{}
	}
	if limit <= 0 {
		limit = b.cfg.Query.PageSize
	}

	needle := strings.ToLower(query)
	window := b.AllPosts(ctx, b.cfg.Query.SearchWindow)

	matches := make([]*Post, 0, limit)
	for _, post := range window {
		haystack := strings.ToLower(post.Title + " " + StripHTML(post.Content) + " " + post.CategoryID)
		if strings.Contains(haystack, needle) {
			matches = append(matches, post)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}
