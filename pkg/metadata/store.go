// Package metadata defines the gateway to the external metadata store.
//
// The store owns all persisted FileEntry and Sandbox state; the protocol core
// holds no copy across requests and re-reads what it needs on every handler
// invocation. Implementations must serialize each individual call (single
// transaction semantics per operation) but no transaction ever spans two
// calls: the two-phase write protocol (ReserveWrite, blob upload,
// CommitWrite) is explicitly not atomic across the metadata and blob stores.
package metadata

import (
	"context"
	"time"
)

// Store is the metadata gateway consumed by the protocol layer.
//
// Visibility rules: Stat and ListChildren only ever observe ready entries.
// Between ReserveWrite tombstoning a prior ready entry and CommitWrite
// activating the new one, readers of that path see nothing; the design favors
// never exposing half-written content over continuous availability.
//
// Thread safety: implementations must be safe for unbounded concurrent use.
// Two concurrent ReserveWrite calls for the same path may both observe the
// same prior entry and produce two pending entries; the last CommitWrite wins
// visibility and the loser's reservation is stranded (see ListPendingBefore).
type Store interface {
	// ========================================================================
	// Sandboxes
	// ========================================================================

	// CreateSandbox creates a tenant. The slug must match SlugPattern
	// (ErrInvalidArgument otherwise) and be unique (ErrAlreadyExists).
	CreateSandbox(ctx context.Context, name, slug string) (*Sandbox, error)

	// GetSandbox looks a tenant up by slug. ErrNotFound if absent.
	GetSandbox(ctx context.Context, slug string) (*Sandbox, error)

	// ListSandboxes returns all tenants, newest first.
	ListSandboxes(ctx context.Context) ([]Sandbox, error)

	// RemoveSandbox hard-deletes the sandbox record and tombstones every
	// entry scoped to the tenant, regardless of status. ErrNotFound if the
	// slug is unknown.
	RemoveSandbox(ctx context.Context, slug string) error

	// ========================================================================
	// Entry reads
	// ========================================================================

	// Stat returns the current ready entry at path, or ErrNotFound.
	Stat(ctx context.Context, tenant, path string) (*FileEntry, error)

	// ListChildren returns all ready entries whose ParentPath equals
	// parentPath, sorted by name. Listing a non-existent directory returns
	// an empty slice, not an error.
	ListChildren(ctx context.Context, tenant, parentPath string) ([]FileEntry, error)

	// ========================================================================
	// Entry mutations
	// ========================================================================

	// EnsureDirectory creates a ready directory entry at path (version 1),
	// or returns the existing one unchanged if a ready directory is already
	// there (idempotent). A ready file at path is ErrConflict.
	EnsureDirectory(ctx context.Context, tenant, path, name, parentPath string) (*FileEntry, error)

	// ReserveWrite begins a two-phase file write. Any prior ready entry at
	// path is tombstoned immediately and a new pending entry is inserted at
	// version prior+1 (or 1), with an object key derived by ObjectKeyFor.
	// The caller must upload the content under the returned key and then
	// call CommitWrite.
	//
	// This transition is not reversible: retrying after a partial failure
	// produces a second pending entry rather than recovering the first.
	ReserveWrite(ctx context.Context, tenant, path, name, parentPath string, size int64) (*WriteReservation, error)

	// CommitWrite flips a pending entry to ready and records the actual
	// uploaded size and mtime. ErrInvalidState if the entry is missing or
	// not pending.
	CommitWrite(ctx context.Context, entryID string, size int64) (*FileEntry, error)

	// Move re-points the ready entry at srcPath to dstPath, patching Path,
	// Name, and ParentPath in place; version and object key are unchanged.
	// A ready occupant at dstPath is tombstoned first. ErrNotFound if there
	// is no ready entry at srcPath.
	Move(ctx context.Context, tenant, srcPath, dstPath, dstName, dstParentPath string) (*FileEntry, error)

	// SoftDelete tombstones the ready entry at path; no-op if absent. For a
	// directory, its immediate ready children are tombstoned as well, one
	// level only. Entries nested deeper keep their ready status and become
	// unreachable orphans; this matches the modeled system and is not
	// corrected here.
	SoftDelete(ctx context.Context, tenant, path string) error

	// ========================================================================
	// Reconciliation
	// ========================================================================

	// ListPendingBefore returns pending entries whose mtime is before
	// cutoff. These are stranded reservations: writes whose upload or
	// commit never completed.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]FileEntry, error)

	// TombstoneEntry transitions the identified pending entry to deleted.
	// ErrInvalidState if the entry is missing or not pending; ready entries
	// are never touched through this path.
	TombstoneEntry(ctx context.Context, entryID string) error

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Healthcheck verifies the store can serve requests.
	Healthcheck(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
