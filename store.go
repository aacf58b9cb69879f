package lantern

import (
	"context"
	"fmt"
)

// OrderField names a field posts can be ordered by.
type OrderField string

const (
	OrderCreatedAt OrderField = "createdAt"
	OrderUpdatedAt OrderField = "updatedAt"
)

// Fields that support equality filters.
const (
	FieldCategoryID = "categoryId"
	FieldSlug       = "slug"
)

// DocumentStore is the query surface of the underlying document database.
// Implementations issue a single attempt per call and propagate errors
// un-swallowed; resilience belongs to the Executor, not this layer.
type DocumentStore interface {
	// Init prepares the store, such as creating buckets or tables.
	Init() error
	// Close closes the store.
	Close() error
	// Create persists a new post, assigns its ID, and returns it.
	Create(ctx context.Context, post *Post) (*Post, error)
	// Update replaces an existing post in place, keyed by post.ID.
	Update(ctx context.Context, post *Post) error
	// Delete removes a post immediately. No soft-delete, no tombstone.
	Delete(ctx context.Context, id string) error
	// GetByKey retrieves a single document by id. A missing key yields a
	// Document whose Exists reports false, not an error.
	GetByKey(ctx context.Context, id string) (Document, error)
	// QueryByEquality returns up to limit documents where field equals
	// value, ordered by orderBy descending.
	QueryByEquality(ctx context.Context, field, value string, orderBy OrderField, limit int) ([]Document, error)
	// QueryOrdered returns up to limit documents ordered by orderBy
	// descending, starting after the given cursor when one is provided.
	QueryOrdered(ctx context.Context, orderBy OrderField, limit int, after *Cursor) ([]Document, error)
}

// ValidateQuery checks the query contract shared by all store backends.
// Violations are implementer bugs, so they fail fast with ErrInvalidQuery
// instead of being swallowed or retried.
func ValidateQuery(field string, orderBy OrderField, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit %d is not positive", ErrInvalidQuery, limit)
	}
	switch orderBy {
	case OrderCreatedAt, OrderUpdatedAt:
	default:
		return fmt.Errorf("%w: unknown order field %q", ErrInvalidQuery, orderBy)
	}
	switch field {
	case "", FieldCategoryID, FieldSlug:
	default:
		return fmt.Errorf("%w: field %q does not support equality filters", ErrInvalidQuery, field)
	}
	return nil
}
