package lantern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostExcerpt(t *testing.T) {
	post := &Post{Content: "<p>The quick brown fox jumps over the lazy dog.</p>"}

	assert.Equal(t, "The quick brown fox jumps over the lazy dog.", post.Excerpt(100))
	assert.Equal(t, "The quick…", post.Excerpt(10))
	assert.Equal(t, "", (&Post{}).Excerpt(10))
}

func TestPostPublishedDate(t *testing.T) {
	post := &Post{CreatedAt: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)}
	assert.Equal(t, "Mar 5, 2026", post.PublishedDate())
	assert.Equal(t, "", (&Post{}).PublishedDate())
}

func TestPostSerializeRoundTrip(t *testing.T) {
	post := &Post{
		ID:         "p1",
		Title:      "Title",
		Content:    "<p>body</p>",
		CategoryID: "news",
		Slug:       "title",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := post.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(raw)
	require.NoError(t, err)
	assert.Equal(t, post, got)
}

func TestSortByRecency(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	posts := []*Post{
		{ID: "a", CreatedAt: t1},
		{ID: "c", CreatedAt: t2},
		{ID: "b", CreatedAt: t2},
	}
	SortByRecency(posts)

	assert.Equal(t, "c", posts[0].ID, "ties break by ID descending")
	assert.Equal(t, "b", posts[1].ID)
	assert.Equal(t, "a", posts[2].ID)
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("", OrderCreatedAt, 10))
	assert.NoError(t, ValidateQuery(FieldCategoryID, OrderUpdatedAt, 1))
	assert.NoError(t, ValidateQuery(FieldSlug, OrderCreatedAt, 1))

	assert.ErrorIs(t, ValidateQuery("", OrderCreatedAt, 0), ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQuery("", OrderField("title"), 10), ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQuery("content", OrderCreatedAt, 10), ErrInvalidQuery)
}
