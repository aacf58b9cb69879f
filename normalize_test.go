package lantern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostTimestampShapes(t *testing.T) {
	instant := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	shapes := map[string]any{
		"native time":      instant,
		"server timestamp": ServerTimestamp{Seconds: instant.Unix()},
		"rfc3339 string":   instant.Format(time.RFC3339Nano),
	}

	var normalized []*Post
	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			post := NormalizePost(NewDocument("p1", map[string]any{
				"title":     "Title",
				"createdAt": shape,
				"updatedAt": shape,
			}))
			require.NotNil(t, post)
			assert.True(t, post.CreatedAt.Equal(instant),
				"all timestamp shapes must resolve to the same instant")
			normalized = append(normalized, post)
		})
	}

	// Shape of the source never leaks into the result.
	for i := 1; i < len(normalized); i++ {
		assert.True(t, normalized[0].CreatedAt.Equal(normalized[i].CreatedAt))
	}
}

func TestNormalizePostDefaults(t *testing.T) {
	post := NormalizePost(NewDocument("p1", map[string]any{}))
	require.NotNil(t, post)

	assert.Equal(t, "p1", post.ID)
	assert.Empty(t, post.Title)
	assert.Empty(t, post.Content)
	assert.Empty(t, post.CategoryID)
	assert.Empty(t, post.ImageURL)
	assert.Empty(t, post.Slug)
	assert.True(t, post.CreatedAt.IsZero())
	assert.True(t, post.UpdatedAt.IsZero())
}

func TestNormalizePostIgnoresMalformedFields(t *testing.T) {
	post := NormalizePost(NewDocument("p1", map[string]any{
		"title":     42,
		"createdAt": "not a date",
		"updatedAt": []string{"nope"},
	}))
	require.NotNil(t, post)
	assert.Empty(t, post.Title)
	assert.True(t, post.CreatedAt.IsZero())
	assert.True(t, post.UpdatedAt.IsZero())
}

func TestNormalizePostMissingDocument(t *testing.T) {
	assert.Nil(t, NormalizePost(MissingDocument("gone")))
	assert.Nil(t, NormalizePost(nil))
}

func TestNormalizePostsDropsMissing(t *testing.T) {
	posts := normalizePosts([]Document{
		NewDocument("a", map[string]any{"title": "A"}),
		MissingDocument("gone"),
		NewDocument("b", map[string]any{"title": "B"}),
	})
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "b", posts[1].ID)
}

func TestServerTimestampTime(t *testing.T) {
	ts := ServerTimestamp{Seconds: 1700000000, Nanos: 500000000}
	assert.Equal(t, time.Unix(1700000000, 500000000).UTC(), ts.Time())
}
