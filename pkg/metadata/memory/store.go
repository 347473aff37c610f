// Package memory implements the metadata store in process memory.
//
// This implementation backs tests and development environments. It keeps
// every entry ever written (including tombstones, which are never purged) and
// maintains two indexes over the ready subset: a (tenant, path) pointer and a
// (tenant, parentPath) children map.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// keySep separates tenant from path in index keys. Slugs cannot contain it
// (SlugPattern is alphanumeric plus hyphen) and normalized paths never do.
const keySep = "\x00"

// MemoryStore implements metadata.Store using in-memory maps.
//
// Thread safety: all operations take a single read-write mutex, giving each
// call the single-transaction semantics the interface requires. No lock is
// held across calls, so the documented cross-call races (double reservation,
// read gap during overwrite) are reproduced faithfully.
type MemoryStore struct {
	mu sync.RWMutex

	// entries holds every entry by ID, in all statuses. Append-only except
	// for in-place status/field patches.
	entries map[string]*metadata.FileEntry

	// ready maps tenant\x00path to the ID of the current ready entry.
	ready map[string]string

	// children maps tenant\x00parentPath to {name: ID} for ready entries.
	children map[string]map[string]string

	// sandboxes maps slug to tenant record.
	sandboxes map[string]*metadata.Sandbox
}

// NewMemoryStore creates an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]*metadata.FileEntry),
		ready:     make(map[string]string),
		children:  make(map[string]map[string]string),
		sandboxes: make(map[string]*metadata.Sandbox),
	}
}

func readyKey(tenant, path string) string {
	return tenant + keySep + path
}

// copyEntry returns a defensive copy so callers never alias internal state.
func copyEntry(e *metadata.FileEntry) *metadata.FileEntry {
	c := *e
	return &c
}

// indexReady inserts e into the ready and children indexes. Caller holds mu.
func (s *MemoryStore) indexReady(e *metadata.FileEntry) {
	s.ready[readyKey(e.TenantID, e.Path)] = e.ID
	ck := readyKey(e.TenantID, e.ParentPath)
	if s.children[ck] == nil {
		s.children[ck] = make(map[string]string)
	}
	s.children[ck][e.Name] = e.ID
}

// unindexReady removes e from the ready and children indexes. Caller holds mu.
func (s *MemoryStore) unindexReady(e *metadata.FileEntry) {
	delete(s.ready, readyKey(e.TenantID, e.Path))
	if m := s.children[readyKey(e.TenantID, e.ParentPath)]; m != nil {
		if m[e.Name] == e.ID {
			delete(m, e.Name)
		}
	}
}

// tombstone transitions a ready entry to deleted and drops it from the
// indexes. Caller holds mu.
func (s *MemoryStore) tombstone(e *metadata.FileEntry, now time.Time) {
	s.unindexReady(e)
	e.Status = metadata.StatusDeleted
	e.Mtime = now
}

// readyAt returns the current ready entry at path, or nil. Caller holds mu.
func (s *MemoryStore) readyAt(tenant, path string) *metadata.FileEntry {
	id, ok := s.ready[readyKey(tenant, path)]
	if !ok {
		return nil
	}
	return s.entries[id]
}

// ============================================================================
// Sandboxes
// ============================================================================

func (s *MemoryStore) CreateSandbox(ctx context.Context, name, slug string) (*metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !metadata.SlugPattern.MatchString(slug) {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrInvalidArgument,
			Message: "slug must be 3-50 characters, lowercase alphanumeric and hyphens, cannot start or end with hyphen",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sandboxes[slug]; exists {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrAlreadyExists,
			Message: "sandbox slug already exists",
			Path:    slug,
		}
	}

	sb := &metadata.Sandbox{
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}
	s.sandboxes[slug] = sb

	c := *sb
	return &c, nil
}

func (s *MemoryStore) GetSandbox(ctx context.Context, slug string) (*metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sb, ok := s.sandboxes[slug]
	if !ok {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrNotFound,
			Message: "sandbox not found",
			Path:    slug,
		}
	}

	c := *sb
	return &c, nil
}

func (s *MemoryStore) ListSandboxes(ctx context.Context) ([]metadata.Sandbox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]metadata.Sandbox, 0, len(s.sandboxes))
	for _, sb := range s.sandboxes {
		out = append(out, *sb)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) RemoveSandbox(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sandboxes[slug]; !ok {
		return &metadata.StoreError{
			Code:    metadata.ErrNotFound,
			Message: "sandbox not found",
			Path:    slug,
		}
	}
	delete(s.sandboxes, slug)

	now := time.Now()
	for _, e := range s.entries {
		if e.TenantID == slug && e.Status != metadata.StatusDeleted {
			e.Status = metadata.StatusDeleted
			e.Mtime = now
		}
	}

	// Drop the tenant's ready indexes wholesale.
	prefix := slug + keySep
	for k := range s.ready {
		if strings.HasPrefix(k, prefix) {
			delete(s.ready, k)
		}
	}
	for k := range s.children {
		if strings.HasPrefix(k, prefix) {
			delete(s.children, k)
		}
	}

	return nil
}

// ============================================================================
// Entry reads
// ============================================================================

func (s *MemoryStore) Stat(ctx context.Context, tenant, path string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.readyAt(tenant, path)
	if e == nil {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrNotFound,
			Message: "path not found",
			Path:    path,
		}
	}
	return copyEntry(e), nil
}

func (s *MemoryStore) ListChildren(ctx context.Context, tenant, parentPath string) ([]metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.children[readyKey(tenant, parentPath)]
	out := make([]metadata.FileEntry, 0, len(m))
	for _, id := range m {
		if e, ok := s.entries[id]; ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================================
// Entry mutations
// ============================================================================

func (s *MemoryStore) EnsureDirectory(ctx context.Context, tenant, path, name, parentPath string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.readyAt(tenant, path); existing != nil {
		if !existing.IsDir() {
			return nil, &metadata.StoreError{
				Code:    metadata.ErrConflict,
				Message: "path exists and is not a directory",
				Path:    path,
			}
		}
		return copyEntry(existing), nil
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
	s.entries[e.ID] = e
	s.indexReady(e)

	return copyEntry(e), nil
}

func (s *MemoryStore) ReserveWrite(ctx context.Context, tenant, path, name, parentPath string, size int64) (*metadata.WriteReservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	nextVersion := int64(1)
	if prev := s.readyAt(tenant, path); prev != nil {
		nextVersion = prev.Version + 1
		s.tombstone(prev, now)
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
	s.entries[e.ID] = e

	return &metadata.WriteReservation{
		EntryID:   e.ID,
		ObjectKey: e.ObjectKey,
		Version:   e.Version,
	}, nil
}

func (s *MemoryStore) CommitWrite(ctx context.Context, entryID string, size int64) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || e.Status != metadata.StatusPending {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrInvalidState,
			Message: "cannot commit: entry not in pending state",
		}
	}

	now := time.Now()

	// Two racing reservations can both reach commit; the later commit wins
	// visibility, displacing whatever is ready at the path.
	if cur := s.readyAt(e.TenantID, e.Path); cur != nil && cur.ID != e.ID {
		s.tombstone(cur, now)
	}

	e.Status = metadata.StatusReady
	e.Size = size
	e.Mtime = now
	s.indexReady(e)

	return copyEntry(e), nil
}

func (s *MemoryStore) Move(ctx context.Context, tenant, srcPath, dstPath, dstName, dstParentPath string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.readyAt(tenant, srcPath)
	if src == nil {
		return nil, &metadata.StoreError{
			Code:    metadata.ErrNotFound,
			Message: "source not found",
			Path:    srcPath,
		}
	}

	now := time.Now()
	if dst := s.readyAt(tenant, dstPath); dst != nil && dst.ID != src.ID {
		s.tombstone(dst, now)
	}

	// Patch in place; version and object key are carried unchanged.
	s.unindexReady(src)
	src.Path = dstPath
	src.Name = dstName
	src.ParentPath = dstParentPath
	src.Mtime = now
	s.indexReady(src)

	return copyEntry(src), nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, tenant, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.readyAt(tenant, path)
	if e == nil {
		return nil
	}

	now := time.Now()
	s.tombstone(e, now)

	// One level only: grandchildren keep their ready status and become
	// unreachable through listing.
	if e.IsDir() {
		m := s.children[readyKey(tenant, path)]
		for _, id := range m {
			if child, ok := s.entries[id]; ok {
				s.tombstone(child, now)
			}
		}
	}

	return nil
}

// ============================================================================
// Reconciliation
// ============================================================================

func (s *MemoryStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []metadata.FileEntry
	for _, e := range s.entries {
		if e.Status == metadata.StatusPending && e.Mtime.Before(cutoff) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mtime.Before(out[j].Mtime) })
	return out, nil
}

func (s *MemoryStore) TombstoneEntry(ctx context.Context, entryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || e.Status != metadata.StatusPending {
		return &metadata.StoreError{
			Code:    metadata.ErrInvalidState,
			Message: "cannot tombstone: entry not in pending state",
		}
	}

	e.Status = metadata.StatusDeleted
	e.Mtime = time.Now()
	return nil
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
