package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cweiss/showsync/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSeries = []byte("series")
)

// SeriesStore persists the followed-series catalogue using BoltDB. Keys are
// `lower(id)/lower(lang)`, so the same series may be followed in several
// languages and all operations on an id cover every language variant.
type SeriesStore struct {
	db *bolt.DB
}

func NewSeriesStore(path string) (*SeriesStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSeries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SeriesStore{db: db}, nil
}

func (s *SeriesStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func refKey(ref domain.SeriesRef) []byte {
	return []byte(domain.CanonicalID(ref.TVDBID) + "/" + strings.ToLower(strings.TrimSpace(ref.Language)))
}

func idPrefix(id string) string {
	return domain.CanonicalID(id) + "/"
}

// Put stores ref, replacing a previous entry with the same id and language.
// A different language for the same id becomes a second entry.
func (s *SeriesStore) Put(ref domain.SeriesRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSeries).Put(refKey(ref), data)
	})
}

// Get looks up a series by id, matching case-insensitively. When a series is
// followed in several languages the first variant in key order is returned.
func (s *SeriesStore) Get(id string) (domain.SeriesRef, bool) {
	var ref domain.SeriesRef
	found := false
	prefix := idPrefix(id)
	s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSeries).Cursor()
		k, v := c.Seek([]byte(prefix))
		if k == nil || !strings.HasPrefix(string(k), prefix) {
			return nil
		}
		if json.Unmarshal(v, &ref) == nil {
			found = true
		}
		return nil
	})
	return ref, found
}

// Delete removes every language variant of a series. Returns
// domain.ErrSeriesNotFound when no entry matches.
func (s *SeriesStore) Delete(id string) error {
	prefix := idPrefix(id)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSeries)
		c := b.Cursor()
		deleted := 0
		for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		if deleted == 0 {
			return domain.ErrSeriesNotFound
		}
		return nil
	})
}

// List returns every stored series in key order: by canonical id, then by
// language within one id.
func (s *SeriesStore) List() ([]domain.SeriesRef, error) {
	var refs []domain.SeriesRef
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSeries).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ref domain.SeriesRef
			if err := json.Unmarshal(v, &ref); err != nil {
				return fmt.Errorf("decode series %q: %w", k, err)
			}
			refs = append(refs, ref)
		}
		return nil
	})
	return refs, err
}
