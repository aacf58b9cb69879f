// Package bboltstore persists posts in a bbolt file, with index buckets
// maintained alongside the primary records so ordered and filtered reads are
// range scans rather than full-bucket sweeps.
package bboltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/lanternblog/lantern"
)

var (
	bucketPosts     = []byte("posts")
	bucketSlugs     = []byte("slugs")
	bucketByCreated = []byte("by_created")
	bucketByUpdated = []byte("by_updated")
	bucketCatByCre  = []byte("cat_created")
	bucketCatByUpd  = []byte("cat_updated")
)

// Store is a lantern.DocumentStore backed by a single bbolt file.
type Store struct {
	path string
	db   *bolt.DB
}

// New creates a Store that will open the bbolt file at path on Init.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("opening bbolt file %q: %w", s.path, err)
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPosts, bucketSlugs, bucketByCreated, bucketByUpdated, bucketCatByCre, bucketCatByUpd} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %q: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, post *lantern.Post) (*lantern.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketPosts).Get([]byte(stored.ID)) != nil {
			return fmt.Errorf("%w: %q", lantern.ErrPostExists, stored.ID)
		}
		return writePost(tx, stored)
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) Update(ctx context.Context, post *lantern.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPosts).Get([]byte(post.ID))
		if raw == nil {
			return fmt.Errorf("%w: %q", lantern.ErrPostNotFound, post.ID)
		}
		previous, err := lantern.Deserialize(raw)
		if err != nil {
			return fmt.Errorf("decoding stored post %q: %w", post.ID, err)
		}
		if err := clearIndexes(tx, previous); err != nil {
			return err
		}
		return writePost(tx, post)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPosts).Get([]byte(id))
		if raw == nil {
			return nil
		}
		post, err := lantern.Deserialize(raw)
		if err != nil {
			return fmt.Errorf("decoding stored post %q: %w", id, err)
		}
		if err := clearIndexes(tx, post); err != nil {
			return err
		}
		return tx.Bucket(bucketPosts).Delete([]byte(id))
	})
}

func (s *Store) GetByKey(ctx context.Context, id string) (lantern.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc lantern.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPosts).Get([]byte(id))
		if raw == nil {
			doc = lantern.MissingDocument(id)
			return nil
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return err
		}
		doc = lantern.NewDocument(id, fields)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) QueryByEquality(ctx context.Context, field, value string, orderBy lantern.OrderField, limit int) ([]lantern.Document, error) {
	if err := lantern.ValidateQuery(field, orderBy, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if field == lantern.FieldSlug {
		return s.bySlug(value)
	}
	return s.byCategory(ctx, value, orderBy, limit)
}

func (s *Store) QueryOrdered(ctx context.Context, orderBy lantern.OrderField, limit int, after *lantern.Cursor) ([]lantern.Document, error) {
	if err := lantern.ValidateQuery("", orderBy, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket := bucketByCreated
	if orderBy == lantern.OrderUpdatedAt {
		bucket = bucketByUpdated
	}

	var docs []lantern.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()

		var k, v []byte
		if after != nil {
			// Position at the cursor's own index entry, then step past it.
			seek := sortKey(after.After, after.AfterID)
			k, v = c.Seek(seek)
			if k == nil {
				k, v = c.Last()
			} else {
				k, v = c.Prev()
			}
		} else {
			k, v = c.Last()
		}

		for ; k != nil && len(docs) < limit; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := loadDoc(tx, v)
			if err != nil {
				return err
			}
			if doc != nil {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) bySlug(slug string) ([]lantern.Document, error) {
	var docs []lantern.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketSlugs).Get([]byte(slug))
		if id == nil {
			return nil
		}
		doc, err := loadDoc(tx, id)
		if err != nil {
			return err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) byCategory(ctx context.Context, categoryID string, orderBy lantern.OrderField, limit int) ([]lantern.Document, error) {
	bucket := bucketCatByCre
	if orderBy == lantern.OrderUpdatedAt {
		bucket = bucketCatByUpd
	}
	prefix := append([]byte(categoryID), 0x00)

	var docs []lantern.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()

		// Walk the category's key range backwards for newest-first order.
		// Seek to just past the prefix, then step back into it.
		upper := append([]byte(categoryID), 0x01)
		k, v := c.Seek(upper)
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}

		for ; k != nil && bytes.HasPrefix(k, prefix) && len(docs) < limit; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := loadDoc(tx, v)
			if err != nil {
				return err
			}
			if doc != nil {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func loadDoc(tx *bolt.Tx, id []byte) (lantern.Document, error) {
	raw := tx.Bucket(bucketPosts).Get(id)
	if raw == nil {
		// Index entry outlived its record; skip rather than fail the scan.
		return nil, nil
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return lantern.NewDocument(string(id), fields), nil
}

// decodeFields unmarshals the stored JSON into a loose field record. Dates
// come back as RFC 3339 strings; the normalizer resolves them.
func decodeFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding stored post: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

func writePost(tx *bolt.Tx, post *lantern.Post) error {
	raw, err := post.Serialize()
	if err != nil {
		return fmt.Errorf("encoding post %q: %w", post.ID, err)
	}
	if err := tx.Bucket(bucketPosts).Put([]byte(post.ID), raw); err != nil {
		return err
	}
	if post.Slug != "" {
		if err := tx.Bucket(bucketSlugs).Put([]byte(post.Slug), []byte(post.ID)); err != nil {
			return err
		}
	}

	id := []byte(post.ID)
	if err := tx.Bucket(bucketByCreated).Put(sortKey(post.CreatedAt, post.ID), id); err != nil {
		return err
	}
	if err := tx.Bucket(bucketByUpdated).Put(sortKey(post.UpdatedAt, post.ID), id); err != nil {
		return err
	}
	if err := tx.Bucket(bucketCatByCre).Put(catKey(post.CategoryID, post.CreatedAt, post.ID), id); err != nil {
		return err
	}
	return tx.Bucket(bucketCatByUpd).Put(catKey(post.CategoryID, post.UpdatedAt, post.ID), id)
}

func clearIndexes(tx *bolt.Tx, post *lantern.Post) error {
	if post.Slug != "" {
		if err := tx.Bucket(bucketSlugs).Delete([]byte(post.Slug)); err != nil {
			return err
		}
	}
	if err := tx.Bucket(bucketByCreated).Delete(sortKey(post.CreatedAt, post.ID)); err != nil {
		return err
	}
	if err := tx.Bucket(bucketByUpdated).Delete(sortKey(post.UpdatedAt, post.ID)); err != nil {
		return err
	}
	if err := tx.Bucket(bucketCatByCre).Delete(catKey(post.CategoryID, post.CreatedAt, post.ID)); err != nil {
		return err
	}
	return tx.Bucket(bucketCatByUpd).Delete(catKey(post.CategoryID, post.UpdatedAt, post.ID))
}

// sortKey builds a lexically ordered index key: big-endian unix nanos
// followed by the id, so byte order equals (time, id) order. Zero and
// pre-1970 times clamp to nanos 0 rather than wrapping past the top of the
// uint64 range, so they sort oldest like everywhere else.
func sortKey(t time.Time, id string) []byte {
	nanos := t.UnixNano()
	if t.IsZero() || nanos < 0 {
		nanos = 0
	}
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(nanos))
	return append(key, id...)
}

func catKey(categoryID string, t time.Time, id string) []byte {
	key := make([]byte, 0, len(categoryID)+1+8+len(id))
	key = append(key, categoryID...)
	key = append(key, 0x00)
	return append(key, sortKey(t, id)...)
}
