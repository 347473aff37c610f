package badger

import (
	"context"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// ============================================================================
// Entry reads
// ============================================================================

func (s *BadgerStore) Stat(ctx context.Context, tenant, path string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *metadata.FileEntry
	err := s.db.View(func(txn *badger.Txn) error {
		e, err := readyEntry(txn, tenant, path)
		if err != nil {
			return err
		}
		if e == nil {
			return &metadata.StoreError{
				Code:    metadata.ErrNotFound,
				Message: "path not found",
				Path:    path,
			}
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BadgerStore) ListChildren(ctx context.Context, tenant, parentPath string) ([]metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []metadata.FileEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = childScanPrefix(tenant, parentPath)
		it := txn.NewIterator(opts)
		defer it.Close()

		var ids []string
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, id := range ids {
			e, err := getEntry(txn, id)
			if err != nil {
				return err
			}
			if e != nil {
				out = append(out, *e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================================
// Entry mutations
// ============================================================================

func (s *BadgerStore) EnsureDirectory(ctx context.Context, tenant, path, name, parentPath string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *metadata.FileEntry
	err := s.update(func(txn *badger.Txn) error {
		existing, err := readyEntry(txn, tenant, path)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsDir() {
				return &metadata.StoreError{
					Code:    metadata.ErrConflict,
					Message: "path exists and is not a directory",
					Path:    path,
				}
			}
			entry = existing
			return nil
		}

		e := &metadata.FileEntry{
			ID:         uuid.NewString(),
			TenantID:   tenant,
			Path:       path,
			Name:       name,
			ParentPath: parentPath,
			Type:       metadata.EntryTypeDirectory,
			Size:       0,
			Mtime:      time.Now(),
			Version:    1,
			Status:     metadata.StatusReady,
		}
		if err := putEntry(txn, e); err != nil {
			return err
		}
		if err := indexReady(txn, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BadgerStore) ReserveWrite(ctx context.Context, tenant, path, name, parentPath string, size int64) (*metadata.WriteReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var res *metadata.WriteReservation
	err := s.update(func(txn *badger.Txn) error {
		now := time.Now()

		nextVersion := int64(1)
		prev, err := readyEntry(txn, tenant, path)
		if err != nil {
			return err
		}
		if prev != nil {
			nextVersion = prev.Version + 1
			if err := tombstoneInTxn(txn, prev, now); err != nil {
				return err
			}
		}

		e := &metadata.FileEntry{
			ID:         uuid.NewString(),
			TenantID:   tenant,
			Path:       path,
			Name:       name,
			ParentPath: parentPath,
			Type:       metadata.EntryTypeFile,
			Size:       size,
			Mtime:      now,
			Version:    nextVersion,
			ObjectKey:  metadata.ObjectKeyFor(tenant, path, nextVersion),
			Status:     metadata.StatusPending,
		}
		if err := putEntry(txn, e); err != nil {
			return err
		}
		if err := txn.Set(keyPending(e.ID), encodeTimestamp(now.UnixNano())); err != nil {
			return err
		}

		res = &metadata.WriteReservation{
			EntryID:   e.ID,
			ObjectKey: e.ObjectKey,
			Version:   e.Version,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *BadgerStore) CommitWrite(ctx context.Context, entryID string, size int64) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *metadata.FileEntry
	err := s.update(func(txn *badger.Txn) error {
		e, err := getEntry(txn, entryID)
		if err != nil {
			return err
		}
		if e == nil || e.Status != metadata.StatusPending {
			return &metadata.StoreError{
				Code:    metadata.ErrInvalidState,
				Message: "cannot commit: entry not in pending state",
			}
		}

		now := time.Now()

		// A racing reservation may have committed first; the later commit
		// wins visibility and displaces the current ready entry.
		cur, err := readyEntry(txn, e.TenantID, e.Path)
		if err != nil {
			return err
		}
		if cur != nil && cur.ID != e.ID {
			if err := tombstoneInTxn(txn, cur, now); err != nil {
				return err
			}
		}

		if err := txn.Delete(keyPending(e.ID)); err != nil {
			return err
		}

		e.Status = metadata.StatusReady
		e.Size = size
		e.Mtime = now
		if err := putEntry(txn, e); err != nil {
			return err
		}
		if err := indexReady(txn, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BadgerStore) Move(ctx context.Context, tenant, srcPath, dstPath, dstName, dstParentPath string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *metadata.FileEntry
	err := s.update(func(txn *badger.Txn) error {
		src, err := readyEntry(txn, tenant, srcPath)
		if err != nil {
			return err
		}
		if src == nil {
			return &metadata.StoreError{
				Code:    metadata.ErrNotFound,
				Message: "source not found",
				Path:    srcPath,
			}
		}

		now := time.Now()
		dst, err := readyEntry(txn, tenant, dstPath)
		if err != nil {
			return err
		}
		if dst != nil && dst.ID != src.ID {
			if err := tombstoneInTxn(txn, dst, now); err != nil {
				return err
			}
		}

		// Patch in place; version and object key are carried unchanged.
		if err := unindexReady(txn, src); err != nil {
			return err
		}
		src.Path = dstPath
		src.Name = dstName
		src.ParentPath = dstParentPath
		src.Mtime = now
		if err := putEntry(txn, src); err != nil {
			return err
		}
		if err := indexReady(txn, src); err != nil {
			return err
		}
		entry = src
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *BadgerStore) SoftDelete(ctx context.Context, tenant, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badger.Txn) error {
		e, err := readyEntry(txn, tenant, path)
		if err != nil {
			return err
		}
		if e == nil {
			return nil
		}

		now := time.Now()

		// Collect immediate children before mutating; one level only.
		// Grandchildren keep their ready status and become unreachable
		// through listing.
		var doomed []*metadata.FileEntry
		if e.IsDir() {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = childScanPrefix(tenant, path)
			it := txn.NewIterator(opts)

			var ids []string
			for it.Rewind(); it.Valid(); it.Next() {
				err := it.Item().Value(func(val []byte) error {
					ids = append(ids, string(val))
					return nil
				})
				if err != nil {
					it.Close()
					return err
				}
			}
			it.Close()

			for _, id := range ids {
				child, err := getEntry(txn, id)
				if err != nil {
					return err
				}
				if child != nil {
					doomed = append(doomed, child)
				}
			}
		}

		if err := tombstoneInTxn(txn, e, now); err != nil {
			return err
		}
		for _, child := range doomed {
			if err := tombstoneInTxn(txn, child, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// ============================================================================
// Reconciliation
// ============================================================================

func (s *BadgerStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []metadata.FileEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixPending)
		it := txn.NewIterator(opts)
		defer it.Close()

		var ids []string
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var reserved int64
			err := item.Value(func(val []byte) error {
				reserved = decodeTimestamp(val)
				return nil
			})
			if err != nil {
				return err
			}
			if time.Unix(0, reserved).Before(cutoff) {
				ids = append(ids, string(item.Key()[len(prefixPending):]))
			}
		}

		for _, id := range ids {
			e, err := getEntry(txn, id)
			if err != nil {
				return err
			}
			if e != nil && e.Status == metadata.StatusPending {
				out = append(out, *e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Mtime.Before(out[j].Mtime) })
	return out, nil
}

func (s *BadgerStore) TombstoneEntry(ctx context.Context, entryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.update(func(txn *badger.Txn) error {
		e, err := getEntry(txn, entryID)
		if err != nil {
			return err
		}
		if e == nil || e.Status != metadata.StatusPending {
			return &metadata.StoreError{
				Code:    metadata.ErrInvalidState,
				Message: "cannot tombstone: entry not in pending state",
			}
		}
		return tombstoneInTxn(txn, e, time.Now())
	})
}
