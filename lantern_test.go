package lantern

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBlog(t *testing.T) *Blog {
	t.Helper()

	cfg := testConfig()
	blog, err := New(Options{
		Store:  NewMemoryStore(),
		Config: cfg,
		Logger: testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = blog.Close() })
	return blog
}

// seedPosts publishes n posts a minute apart, oldest first, cycling through
// the given categories. Returns the created posts newest first.
func seedPosts(t *testing.T, blog *Blog, n int, categories ...string) []*Post {
	t.Helper()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	created := make([]*Post, 0, n)
	for i := 0; i < n; i++ {
		post, err := blog.CreatePost(context.Background(), &Post{
			Title:      fmt.Sprintf("Post %02d", i),
			Content:    fmt.Sprintf("<p>Body of post %02d</p>", i),
			CategoryID: categories[i%len(categories)],
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		created = append(created, post)
	}

	// Newest first, matching query order.
	for i, j := 0, len(created)-1; i < j; i, j = i+1, j-1 {
		created[i], created[j] = created[j], created[i]
	}
	return created
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	blog, err := New(Options{Store: NewMemoryStore(), Logger: testLogger()})
	require.NoError(t, err)
	defer blog.Close()

	require.NotNil(t, blog.cache)
	require.NotNil(t, blog.exec)
	require.Equal(t, DefaultCacheCapacity, blog.cfg.Cache.Capacity)
}
