package metadata

import (
	"fmt"
	"regexp"
	"time"
)

// EntryType distinguishes files from directories.
type EntryType int

const (
	EntryTypeFile EntryType = iota
	EntryTypeDirectory
)

func (t EntryType) String() string {
	switch t {
	case EntryTypeFile:
		return "file"
	case EntryTypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// EntryStatus is the lifecycle state of a FileEntry.
//
// State machine:
//
//	(none) --EnsureDirectory--> ready            (directories, version 1)
//	(none) --ReserveWrite-----> pending          (files, version n+1)
//	pending --CommitWrite-----> ready
//	ready --ReserveWrite/Move/SoftDelete--> deleted
//
// Entries never leave the deleted state and are never purged; they accumulate
// as an append-only history per path. At most one entry per (tenant, path) is
// ready at any instant.
type EntryStatus int

const (
	StatusReady EntryStatus = iota
	StatusPending
	StatusDeleted
)

func (s EntryStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusPending:
		return "pending"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileEntry is the metadata record for one version of a file or directory.
//
// Path, Name, and ParentPath are always normalized and kept consistent by
// every mutating operation. Version is monotonically increasing per
// (TenantID, Path) lineage and never reused; directories are created at
// version 1 and never re-versioned.
type FileEntry struct {
	// ID uniquely identifies this entry (this version), not the path.
	ID string `json:"id"`

	// TenantID scopes the entry to one sandbox.
	TenantID string `json:"tenant_id"`

	// Path is the absolute, normalized, tenant-relative path.
	Path string `json:"path"`

	// Name and ParentPath are denormalized from Path.
	Name       string `json:"name"`
	ParentPath string `json:"parent_path"`

	Type EntryType `json:"type"`

	// Size is the byte length; 0 for directories.
	Size int64 `json:"size"`

	// Mtime is updated on every mutation of this entry.
	Mtime time.Time `json:"mtime"`

	// Version is assigned at write-reservation time (1 for the first write
	// at a path) and carried unchanged across moves.
	Version int64 `json:"version"`

	// ObjectKey is the blob store handle; empty for directories.
	ObjectKey string `json:"object_key,omitempty"`

	Status EntryStatus `json:"status"`
}

// IsDir reports whether the entry is a directory.
func (e *FileEntry) IsDir() bool {
	return e.Type == EntryTypeDirectory
}

// Sandbox is a tenant record. The slug is the URL-safe identifier used as the
// first segment of every request path.
type Sandbox struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteReservation is returned by ReserveWrite. The caller must upload the
// content to the blob store under ObjectKey before calling CommitWrite with
// EntryID.
type WriteReservation struct {
	EntryID   string
	ObjectKey string
	Version   int64
}

// SlugPattern constrains sandbox slugs: 3-50 characters, lowercase
// alphanumeric and hyphens, no leading or trailing hyphen.
var SlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// ObjectKeyFor derives the blob store key for a file version. The key is
// deterministic from (tenant, path, version), so a retried reservation for
// the same version targets the same object.
func ObjectKeyFor(tenant, path string, version int64) string {
	return fmt.Sprintf("%s%s::v%d", tenant, path, version)
}
