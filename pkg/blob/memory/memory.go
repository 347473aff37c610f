// Package memory implements an in-memory blob store for tests and
// single-process development setups. Contents are lost on restart.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wantpinow/sandboxdav/pkg/blob"
)

// MemoryBlobStore implements blob.Store with an in-memory map.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects: make(map[string][]byte),
	}
}

func (s *MemoryBlobStore) Get(ctx context.Context, key string, rng *blob.ByteRange) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	data, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, 0, fmt.Errorf("object %s: %w", key, blob.ErrObjectNotFound)
	}

	if rng != nil {
		start, end := rng.Start, rng.End
		if start < 0 || start >= int64(len(data)) {
			return nil, 0, fmt.Errorf("object %s: range start %d outside object of %d bytes", key, start, len(data))
		}
		if end >= int64(len(data)) {
			end = int64(len(data)) - 1
		}
		data = data[start : end+1]
	}

	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.objects[key] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored objects. Exposed for tests and the
// reconciler's own tests.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
