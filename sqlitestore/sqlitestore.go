// Package sqlitestore persists posts in a SQLite database. Unlike the bbolt
// backend its queries run through database/sql contexts, so a cancelled or
// timed-out query actually stops executing instead of being abandoned.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lanternblog/lantern"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	category_id TEXT NOT NULL,
	image_url   TEXT NOT NULL DEFAULT '',
	slug        TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created  ON posts (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_updated  ON posts (updated_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_slug     ON posts (slug);
`

// Store is a lantern.DocumentStore backed by a SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

// New creates a Store that will open the SQLite file at path on Init.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening sqlite file %q: %w", s.path, err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, post *lantern.Post) (*lantern.Post, error) {
	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, category_id, image_url, slug, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Title, stored.Content, stored.CategoryID, stored.ImageURL, stored.Slug,
		stored.CreatedAt.UnixNano(), stored.UpdatedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", lantern.ErrPostExists, stored.ID)
		}
		return nil, fmt.Errorf("inserting post %q: %w", stored.ID, err)
	}
	return stored, nil
}

func (s *Store) Update(ctx context.Context, post *lantern.Post) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, category_id = ?, image_url = ?, slug = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title, post.Content, post.CategoryID, post.ImageURL, post.Slug,
		post.CreatedAt.UnixNano(), post.UpdatedAt.UnixNano(), post.ID)
	if err != nil {
		return fmt.Errorf("updating post %q: %w", post.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", lantern.ErrPostNotFound, post.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting post %q: %w", id, err)
	}
	return nil
}

func (s *Store) GetByKey(ctx context.Context, id string) (lantern.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, category_id, image_url, slug, created_at, updated_at
		 FROM posts WHERE id = ?`, id)

	doc, err := scanDoc(row)
	if errors.Is(err, sql.ErrNoRows) {
		return lantern.MissingDocument(id), nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) QueryByEquality(ctx context.Context, field, value string, orderBy lantern.OrderField, limit int) ([]lantern.Document, error) {
	if err := lantern.ValidateQuery(field, orderBy, limit); err != nil {
		return nil, err
	}

	column := "category_id"
	if field == lantern.FieldSlug {
		column = "slug"
	}
	query := fmt.Sprintf(
		`SELECT id, title, content, category_id, image_url, slug, created_at, updated_at
		 FROM posts WHERE %s = ? ORDER BY %s DESC, id DESC LIMIT ?`,
		column, orderColumn(orderBy))

	rows, err := s.db.QueryContext(ctx, query, value, limit)
	if err != nil {
		return nil, fmt.Errorf("querying posts by %s: %w", field, err)
	}
	return collectDocs(rows)
}

func (s *Store) QueryOrdered(ctx context.Context, orderBy lantern.OrderField, limit int, after *lantern.Cursor) ([]lantern.Document, error) {
	if err := lantern.ValidateQuery("", orderBy, limit); err != nil {
		return nil, err
	}

	column := orderColumn(orderBy)
	var rows *sql.Rows
	var err error
	if after != nil {
		query := fmt.Sprintf(
			`SELECT id, title, content, category_id, image_url, slug, created_at, updated_at
			 FROM posts WHERE (%s < ?) OR (%s = ? AND id < ?)
			 ORDER BY %s DESC, id DESC LIMIT ?`, column, column, column)
		nanos := after.After.UnixNano()
		rows, err = s.db.QueryContext(ctx, query, nanos, nanos, after.AfterID, limit)
	} else {
		query := fmt.Sprintf(
			`SELECT id, title, content, category_id, image_url, slug, created_at, updated_at
			 FROM posts ORDER BY %s DESC, id DESC LIMIT ?`, column)
		rows, err = s.db.QueryContext(ctx, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying ordered posts: %w", err)
	}
	return collectDocs(rows)
}

func orderColumn(orderBy lantern.OrderField) string {
	if orderBy == lantern.OrderUpdatedAt {
		return "updated_at"
	}
	return "created_at"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner) (lantern.Document, error) {
	var (
		id, title, content, categoryID, imageURL, slug string
		createdNanos, updatedNanos                     int64
	)
	if err := row.Scan(&id, &title, &content, &categoryID, &imageURL, &slug, &createdNanos, &updatedNanos); err != nil {
		return nil, err
	}
	return lantern.NewDocument(id, map[string]any{
		"title":      title,
		"content":    content,
		"categoryId": categoryID,
		"imageUrl":   imageURL,
		"slug":       slug,
		"createdAt":  time.Unix(0, createdNanos).UTC(),
		"updatedAt":  time.Unix(0, updatedNanos).UTC(),
	}), nil
}

func collectDocs(rows *sql.Rows) ([]lantern.Document, error) {
	defer rows.Close()

	var docs []lantern.Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
