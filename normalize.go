package lantern

import "time"

// NormalizePost converts a raw document into a canonical Post. It returns
// nil for a document that does not exist (deleted between query and read).
// Absent fields default to empty strings or zero dates; normalization never
// fails on a malformed document.
func NormalizePost(doc Document) *Post {
	if doc == nil || !doc.Exists() {
		return nil
	}

	data := doc.Data()
	return &Post{
		ID:         doc.ID(),
		Title:      stringField(data, "title"),
		Content:    stringField(data, "content"),
		CategoryID: stringField(data, "categoryId"),
		ImageURL:   stringField(data, "imageUrl"),
		Slug:       stringField(data, "slug"),
		CreatedAt:  instantOf(data["createdAt"]),
		UpdatedAt:  instantOf(data["updatedAt"]),
	}
}

func normalizePosts(docs []Document) []*Post {
	posts := make([]*Post, 0, len(docs))
	for _, doc := range docs {
		if post := NormalizePost(doc); post != nil {
			posts = append(posts, post)
		}
	}
	return posts
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

// instantOf resolves the dual timestamp representation into a plain
// time.Time. Stores may hand back a native time.Time, a provider wrapper
// implementing Timestamp, or an RFC 3339 string from a JSON transport.
// This is the single place in the codebase that sniffs the date shape.
func instantOf(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case Timestamp:
		return v.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
