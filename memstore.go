package lantern

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a DocumentStore held entirely in process memory. Useful for
// tests and throwaway environments; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string]*Post)}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Create(ctx context.Context, post *Post) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, ok := s.posts[stored.ID]; ok {
		return nil, fmt.Errorf("%w: %q", ErrPostExists, stored.ID)
	}
	s.posts[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, post *Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return fmt.Errorf("%w: %q", ErrPostNotFound, post.ID)
	}
	s.posts[post.ID] = post.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) GetByKey(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return MissingDocument(id), nil
	}
	return NewDocument(post.ID, post.Fields()), nil
}

func (s *MemoryStore) QueryByEquality(ctx context.Context, field, value string, orderBy OrderField, limit int) ([]Document, error) {
	if err := ValidateQuery(field, orderBy, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Post, 0)
	for _, post := range s.posts {
		if fieldValue(post, field) == value {
			matched = append(matched, post)
		}
	}
	return s.collect(matched, orderBy, limit, nil), nil
}

func (s *MemoryStore) QueryOrdered(ctx context.Context, orderBy OrderField, limit int, after *Cursor) ([]Document, error) {
	if err := ValidateQuery("", orderBy, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Post, 0, len(s.posts))
	for _, post := range s.posts {
		all = append(all, post)
	}
	return s.collect(all, orderBy, limit, after), nil
}

// collect sorts descending by the order field (ties broken by ID, also
// descending), skips past the cursor, and wraps up to limit posts.
func (s *MemoryStore) collect(posts []*Post, orderBy OrderField, limit int, after *Cursor) []Document {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, tj := orderValue(posts[i], orderBy), orderValue(posts[j], orderBy)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].ID > posts[j].ID
	})

	docs := make([]Document, 0, limit)
	for _, post := range posts {
		if after != nil {
			t := orderValue(post, orderBy)
			if t.After(after.After) || (t.Equal(after.After) && post.ID >= after.AfterID) {
				continue
			}
		}
		docs = append(docs, NewDocument(post.ID, post.Fields()))
		if len(docs) == limit {
			break
		}
	}
	return docs
}

func fieldValue(post *Post, field string) string {
	switch field {
	case FieldCategoryID:
		return post.CategoryID
	case FieldSlug:
		return post.Slug
	}
	return ""
}

func orderValue(post *Post, orderBy OrderField) time.Time {
	if orderBy == OrderUpdatedAt {
		return post.UpdatedAt
	}
	return post.CreatedAt
}
