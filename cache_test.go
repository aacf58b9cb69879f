package lantern

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func somePosts(ids ...string) []*Post {
	posts := make([]*Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, &Post{ID: id, Title: "Post " + id})
	}
	return posts
}

func TestQueryCacheHit(t *testing.T) {
	cache := NewQueryCache(10, time.Minute)
	stored := somePosts("a", "b")
	cache.Set("key", stored)

	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, stored, got)

	// Repeated reads of a fresh entry return the same result.
	again, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, got, again)
}

func TestQueryCacheMiss(t *testing.T) {
	cache := NewQueryCache(10, time.Minute)
	_, ok := cache.Get("absent")
	assert.False(t, ok)
}

func TestQueryCacheExpiry(t *testing.T) {
	cache := NewQueryCache(10, 10*time.Millisecond)
	cache.Set("key", somePosts("a"))

	time.Sleep(20 * time.Millisecond)

	_, ok := cache.Get("key")
	assert.False(t, ok, "expired entry must behave as a miss")
	assert.Equal(t, 0, cache.Len(), "expired entry must be removed on read")
}

func TestQueryCacheGetStale(t *testing.T) {
	cache := NewQueryCache(10, 10*time.Millisecond)
	stored := somePosts("a")
	cache.Set("key", stored)

	posts, fresh, ok := cache.GetStale("key")
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, stored, posts)

	time.Sleep(20 * time.Millisecond)

	posts, fresh, ok = cache.GetStale("key")
	require.True(t, ok, "stale entries stay readable through GetStale")
	assert.False(t, fresh)
	assert.Equal(t, stored, posts)
}

func TestQueryCacheEvictsColdest(t *testing.T) {
	cache := NewQueryCache(4, time.Minute)
	for i := 0; i < 4; i++ {
		cache.Set(fmt.Sprintf("key%d", i), somePosts(fmt.Sprintf("%d", i)))
	}

	// Heat up everything except key2.
	for _, key := range []string{"key0", "key1", "key3"} {
		_, ok := cache.Get(key)
		require.True(t, ok)
	}

	cache.Set("key4", somePosts("4"))

	_, ok := cache.Get("key2")
	assert.False(t, ok, "the least-hit entry is the one evicted")
	for _, key := range []string{"key0", "key1", "key3", "key4"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "entry %s must survive eviction", key)
	}
}

func TestQueryCacheEvictsExpiredBeforeCold(t *testing.T) {
	cache := NewQueryCache(2, 10*time.Millisecond)
	cache.Set("old", somePosts("a"))

	time.Sleep(20 * time.Millisecond)
	cache.Set("fresh", somePosts("b"))

	// At capacity with one expired entry: the expired one goes first even
	// though the fresh one has fewer hits.
	cache.Set("newest", somePosts("c"))

	_, _, ok := cache.GetStale("old")
	assert.False(t, ok)
	_, ok2 := cache.Get("fresh")
	assert.True(t, ok2)
	_, ok3 := cache.Get("newest")
	assert.True(t, ok3)
}

func TestQueryCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewQueryCache(2, time.Minute)
	cache.Set("a", somePosts("1"))
	cache.Set("b", somePosts("2"))

	cache.Set("a", somePosts("3"))

	assert.Equal(t, 2, cache.Len())
	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", got[0].ID)
}

func TestQueryCacheDefaults(t *testing.T) {
	cache := NewQueryCache(0, 0)
	assert.Equal(t, DefaultCacheCapacity, cache.capacity)
	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
