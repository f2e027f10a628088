// Package store persists the open history of a vimlantis server.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// ErrNotFound is returned when the history is empty.
var ErrNotFound = errors.New("not found")

// FileName is the database file created under the data directory.
const FileName = "history.db"

// DefaultMaxEntries bounds the history kept on disk.
const DefaultMaxEntries = 500

var bucketHistory = []byte("history")

// History is an append-only log of opened files backed by bbolt. A nil
// *History is valid and records nothing.
type History struct {
	db         *bolt.DB
	maxEntries int
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketHistory); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketHistory, err)
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &History{db: db, maxEntries: DefaultMaxEntries}, nil
}

// OpenDir opens the history database inside dataDir.
func OpenDir(dataDir string) (*History, error) {
	return Open(filepath.Join(dataDir, FileName))
}

// SetMaxEntries changes how many entries Record keeps. n <= 0 keeps all.
func (h *History) SetMaxEntries(n int) {
	if h != nil {
		h.maxEntries = n
	}
}

// Close releases the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Record appends an entry, dropping the oldest ones beyond the limit.
func (h *History) Record(_ context.Context, e *models.HistoryEntry) error {
	if h == nil {
		return nil
	}
	if e.OpenedAt.IsZero() {
		e.OpenedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("store history entry: %w", err)
		}
		if h.maxEntries > 0 {
			return trim(b, h.maxEntries)
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (h *History) Recent(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	if h == nil {
		return entries, nil
	}

	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var e models.HistoryEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("unmarshal history entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Last returns the most recent entry. Returns ErrNotFound if there is none.
func (h *History) Last(ctx context.Context) (*models.HistoryEntry, error) {
	entries, err := h.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// Count returns the number of stored entries.
func (h *History) Count(_ context.Context) (int, error) {
	if h == nil {
		return 0, nil
	}
	var n int
	err := h.db.View(func(tx *bolt.Tx) error {
		n = count(tx.Bucket(bucketHistory))
		return nil
	})
	return n, err
}

// trim deletes the oldest keys so that at most keep remain.
func trim(b *bolt.Bucket, keep int) error {
	excess := count(b) - keep
	if excess <= 0 {
		return nil
	}

	stale := make([][]byte, 0, excess)
	c := b.Cursor()
	for k, _ := c.First(); k != nil && len(stale) < excess; k, _ = c.Next() {
		stale = append(stale, append([]byte(nil), k...))
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	return nil
}

// count returns the number of entries from the first and last keys.
// Keys are consecutive sequence numbers and trim only removes from the
// front, so the range has no holes.
func count(b *bolt.Bucket) int {
	c := b.Cursor()
	first, _ := c.First()
	if first == nil {
		return 0
	}
	last, _ := c.Last()
	return int(binary.BigEndian.Uint64(last)-binary.BigEndian.Uint64(first)) + 1
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
