package lantern

import "time"

// Document is a single raw result item from the document store: an
// identifier, a does-it-exist check, and a loosely-typed field accessor.
// Store backends produce Documents; only the normalizer inspects them.
type Document interface {
	ID() string
	Exists() bool
	Data() map[string]any
}

// Timestamp is implemented by provider timestamp wrappers that convert to a
// plain time.Time. The normalizer is the only place allowed to check for it.
type Timestamp interface {
	Time() time.Time
}

// ServerTimestamp is the wrapped timestamp representation some providers
// return in place of a native date value.
type ServerTimestamp struct {
	Seconds int64
	Nanos   int32
}

func (ts ServerTimestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

type rawDocument struct {
	id     string
	fields map[string]any
	exists bool
}

func (d rawDocument) ID() string           { return d.id }
func (d rawDocument) Exists() bool         { return d.exists }
func (d rawDocument) Data() map[string]any { return d.fields }

// NewDocument wraps an id and a field record as a Document.
func NewDocument(id string, fields map[string]any) Document {
	return rawDocument{id: id, fields: fields, exists: true}
}

// MissingDocument represents a key lookup that found nothing. Exists
// reports false and the normalizer turns it into a nil post.
func MissingDocument(id string) Document {
	return rawDocument{id: id}
}
