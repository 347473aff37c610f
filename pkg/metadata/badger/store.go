// Package badger implements the metadata store on BadgerDB.
//
// This is the persistent implementation: entries (including their
// never-purged tombstone history), ready-subset indexes, and sandbox records
// all live in one Badger database. Every interface operation runs inside a
// single Badger transaction, which provides the per-call atomicity the store
// contract requires; no transaction spans two calls.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// BadgerStore implements metadata.Store using BadgerDB for persistence.
//
// Thread safety: Badger transactions provide snapshot isolation; concurrent
// conflicting Update transactions are serialized by retrying on conflict.
type BadgerStore struct {
	db *badger.DB
}

// Config contains configuration for opening a Badger metadata store.
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	Path string `mapstructure:"path"`

	// InMemory runs the database without any files; all state is lost on
	// close. Used by tests.
	InMemory bool `mapstructure:"in_memory"`
}

// NewBadgerStore opens (creating if necessary) a Badger metadata store.
func NewBadgerStore(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger metadata store: path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.InMemory = cfg.InMemory
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// update runs fn in a write transaction, retrying on Badger conflicts so
// each interface call behaves as one serialized mutation.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	for {
		err := s.db.Update(fn)
		if err == badger.ErrConflict {
			continue
		}
		return err
	}
}

// ============================================================================
// Serialization
// ============================================================================

func encodeEntry(e *metadata.FileEntry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(data []byte) (*metadata.FileEntry, error) {
	var e metadata.FileEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return &e, nil
}

func encodeSandbox(sb *metadata.Sandbox) ([]byte, error) {
	return json.Marshal(sb)
}

func decodeSandbox(data []byte) (*metadata.Sandbox, error) {
	var sb metadata.Sandbox
	if err := json.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("failed to decode sandbox: %w", err)
	}
	return &sb, nil
}

// ============================================================================
// Transaction helpers
// ============================================================================

// getEntry loads an entry by ID, or nil if absent.
func getEntry(txn *badger.Txn, entryID string) (*metadata.FileEntry, error) {
	item, err := txn.Get(keyEntry(entryID))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	var e *metadata.FileEntry
	err = item.Value(func(val []byte) error {
		decoded, derr := decodeEntry(val)
		if derr != nil {
			return derr
		}
		e = decoded
		return nil
	})
	return e, err
}

// putEntry stores an entry under its ID.
func putEntry(txn *badger.Txn, e *metadata.FileEntry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	return txn.Set(keyEntry(e.ID), data)
}

// readyEntry loads the current ready entry at (tenant, path), or nil.
func readyEntry(txn *badger.Txn, tenant, path string) (*metadata.FileEntry, error) {
	item, err := txn.Get(keyReady(tenant, path))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ready pointer: %w", err)
	}

	var id string
	if err := item.Value(func(val []byte) error {
		id = string(val)
		return nil
	}); err != nil {
		return nil, err
	}

	return getEntry(txn, id)
}

// indexReady adds e to the ready-subset indexes.
func indexReady(txn *badger.Txn, e *metadata.FileEntry) error {
	if err := txn.Set(keyReady(e.TenantID, e.Path), []byte(e.ID)); err != nil {
		return err
	}
	return txn.Set(keyChild(e.TenantID, e.ParentPath, e.Name), []byte(e.ID))
}

// unindexReady removes e from the ready-subset indexes.
func unindexReady(txn *badger.Txn, e *metadata.FileEntry) error {
	if err := txn.Delete(keyReady(e.TenantID, e.Path)); err != nil {
		return err
	}
	return txn.Delete(keyChild(e.TenantID, e.ParentPath, e.Name))
}

// tombstoneInTxn transitions a ready or pending entry to deleted, dropping
// whatever indexes reference it.
func tombstoneInTxn(txn *badger.Txn, e *metadata.FileEntry, now time.Time) error {
	switch e.Status {
	case metadata.StatusReady:
		if err := unindexReady(txn, e); err != nil {
			return err
		}
	case metadata.StatusPending:
		if err := txn.Delete(keyPending(e.ID)); err != nil {
			return err
		}
	}

	e.Status = metadata.StatusDeleted
	e.Mtime = now
	return putEntry(txn, e)
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *BadgerStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return fmt.Errorf("badger database is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Sandboxes
// ============================================================================

func (s *BadgerStore) CreateSandbox(ctx context.Context, name, slug string) (*metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !metadata.SlugPattern.MatchString(slug) {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrInvalidArgument,
			Message: "slug must be 3-50 characters, lowercase alphanumeric and hyphens, cannot start or end with hyphen",
		}
	}

	sb := &metadata.Sandbox{
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}

	err := s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(keySandbox(slug))
		if err == nil {
			return &metadata.StoreError{
				Code:    metadata.ErrAlreadyExists,
				Message: "sandbox slug already exists",
				Path:    slug,
			}
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to check sandbox: %w", err)
		}

		data, err := encodeSandbox(sb)
		if err != nil {
			return err
		}
		return txn.Set(keySandbox(slug), data)
	})
	if err != nil {
		return nil, err
	}

	return sb, nil
}

func (s *BadgerStore) GetSandbox(ctx context.Context, slug string) (*metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sb *metadata.Sandbox
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keySandbox(slug))
		if err == badger.ErrKeyNotFound {
			return &metadata.StoreError{
				Code:    metadata.ErrNotFound,
				Message: "sandbox not found",
				Path:    slug,
			}
		}
		if err != nil {
			return fmt.Errorf("failed to get sandbox: %w", err)
		}

		return item.Value(func(val []byte) error {
			decoded, derr := decodeSandbox(val)
			if derr != nil {
				return derr
			}
			sb = decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return sb, nil
}

func (s *BadgerStore) ListSandboxes(ctx context.Context) ([]metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []metadata.Sandbox
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSandbox)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				sb, derr := decodeSandbox(val)
				if derr != nil {
					return derr
				}
				out = append(out, *sb)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *BadgerStore) RemoveSandbox(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keySandbox(slug)); err == badger.ErrKeyNotFound {
			return &metadata.StoreError{
				Code:    metadata.ErrNotFound,
				Message: "sandbox not found",
				Path:    slug,
			}
		} else if err != nil {
			return fmt.Errorf("failed to get sandbox: %w", err)
		}

		if err := txn.Delete(keySandbox(slug)); err != nil {
			return err
		}

		// Tombstone every entry scoped to the tenant, regardless of status.
		now := time.Now()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixEntry)
		it := txn.NewIterator(opts)
		defer it.Close()

		var doomed []*metadata.FileEntry
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				e, derr := decodeEntry(val)
				if derr != nil {
					return derr
				}
				if e.TenantID == slug && e.Status != metadata.StatusDeleted {
					doomed = append(doomed, e)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		it.Close()

		for _, e := range doomed {
			if err := tombstoneInTxn(txn, e, now); err != nil {
				return err
			}
		}
		return nil
	})
}
