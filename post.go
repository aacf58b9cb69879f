package lantern

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Post is the canonical unit of content. The document store is the sole
// source of truth; caches hold copies that go stale passively.
type Post struct {
	ID         string    `json:"id"`         // ID is assigned by the store on creation and never changes
	Title      string    `json:"title"`      // Title is the display title of the post
	Content    string    `json:"content"`    // Content is the sanitized rich-text HTML payload
	CategoryID string    `json:"categoryId"` // CategoryID names the category feed the post belongs to
	ImageURL   string    `json:"imageUrl"`   // ImageURL points at the hosted cover image
	Slug       string    `json:"slug"`       // Slug is the URL-safe identifier derived from the title
	CreatedAt  time.Time `json:"createdAt"`  // CreatedAt is set at submission time and preserved on edits
	UpdatedAt  time.Time `json:"updatedAt"`  // UpdatedAt is refreshed on every edit
}

// HasImage returns true if the post has a cover image.
func (p *Post) HasImage() bool {
	return p.ImageURL != ""
}

// HasSlug returns true if the post carries a slug.
func (p *Post) HasSlug() bool {
	return p.Slug != ""
}

// PublishedDate returns the creation date in the format Jan 2, 2006.
func (p *Post) PublishedDate() string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.Format("Jan 2, 2006")
}

// Excerpt returns up to n runes of the post content with markup stripped.
func (p *Post) Excerpt(n int) string {
	text := strings.TrimSpace(StripHTML(p.Content))
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// Fields returns the post as a loosely-typed document record, the shape the
// store backends hand back to the normalizer.
func (p *Post) Fields() map[string]any {
	return map[string]any{
		"title":      p.Title,
		"content":    p.Content,
		"categoryId": p.CategoryID,
		"imageUrl":   p.ImageURL,
		"slug":       p.Slug,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}

// Clone returns a copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	return &c
}

// Serialize serializes the post to a byte slice.
func (p *Post) Serialize() ([]byte, error) {
	return json.Marshal(p)
}

// Deserialize deserializes the byte slice to a post.
func Deserialize(data []byte) (*Post, error) {
	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// SortByRecency sorts posts by creation time, newest first. Ties are broken
// by ID so the order is deterministic regardless of arrival order.
func SortByRecency(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}
