package lantern

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CreatePost validates, sanitizes, and persists a new post. Unlike the read
// path, the write path fails loudly: any validation or store error comes
// back to the caller unretried and uncached.
//
// The slug is derived from the title and made unique by suffixing a counter
// when the base form is already taken.
func (b *Blog) CreatePost(ctx context.Context, post *Post) (*Post, error) {
	if post == nil {
		return nil, fmt.Errorf("%w: nil post", ErrInvalidPost)
	}

	draft := post.Clone()
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if strings.TrimSpace(draft.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidPost)
	}
	if !IsValidCategoryID(draft.CategoryID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, draft.CategoryID)
	}

	draft.Content = b.policy.Sanitize(draft.Content)

	slug, err := b.uniqueSlug(ctx, draft.Title, "")
	if err != nil {
		return nil, fmt.Errorf("assigning slug: %w", err)
	}
	draft.Slug = slug

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	created, err := b.store.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	b.logger.Info("post published",
		"id", created.ID,
		"slug", created.Slug,
		"category", created.CategoryID)
	return created, nil
}

// UpdatePost revises an existing post. The creation date is preserved, the
// update date refreshed, and the slug regenerated from the new title.
func (b *Blog) UpdatePost(ctx context.Context, id string, post *Post) (*Post, error) {
	if post == nil {
		return nil, fmt.Errorf("%w: nil post", ErrInvalidPost)
	}

	doc, err := b.store.GetByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading post %q: %w", id, err)
	}
	existing := NormalizePost(doc)
	if existing == nil {
		return nil, fmt.Errorf("%w: %q", ErrPostNotFound, id)
	}

	revised := post.Clone()
	revised.ID = id
	revised.Title = strings.TrimSpace(revised.Title)
	if revised.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if strings.TrimSpace(revised.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidPost)
	}
	if !IsValidCategoryID(revised.CategoryID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, revised.CategoryID)
	}

	revised.Content = b.policy.Sanitize(revised.Content)

	slug, err := b.uniqueSlug(ctx, revised.Title, id)
	if err != nil {
		return nil, fmt.Errorf("assigning slug: %w", err)
	}
	revised.Slug = slug

	revised.CreatedAt = existing.CreatedAt
	revised.UpdatedAt = time.Now().UTC()

	if err := b.store.Update(ctx, revised); err != nil {
		return nil, fmt.Errorf("updating post %q: %w", id, err)
	}

	b.logger.Info("post updated", "id", id, "slug", revised.Slug)
	return revised, nil
}

// DeletePost removes a post immediately and permanently.
func (b *Blog) DeletePost(ctx context.Context, id string) error {
	if err := b.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting post %q: %w", id, err)
	}
	b.logger.Info("post deleted", "id", id)
	return nil
}

// uniqueSlug derives a slug from title and probes the store until it finds a
// form no other post holds. excludeID lets an update keep its own slug.
func (b *Blog) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	for attempt := 0; ; attempt++ {
		candidate := slugCandidate(title, attempt)
		taken, err := b.slugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (b *Blog) slugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	docs, err := b.store.QueryByEquality(ctx, FieldSlug, slug, OrderCreatedAt, 1)
	if err != nil {
		return false, err
	}
	if len(docs) == 0 {
		return false, nil
	}
	return docs[0].ID() != excludeID, nil
}
