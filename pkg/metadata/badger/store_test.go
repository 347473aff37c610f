package badger

import (
	"context"
	"testing"

	"github.com/wantpinow/sandboxdav/pkg/metadata"
	"github.com/wantpinow/sandboxdav/pkg/metadata/storetest"
)

// TestBadgerStore runs the complete metadata store conformance suite
// against the badger implementation, using badger's in-memory mode so
// no disk state leaks between tests.
func TestBadgerStore(t *testing.T) {
	suite := &storetest.StoreTestSuite{
		NewStore: func() metadata.Store {
			store, err := NewBadgerStore(Config{InMemory: true})
			if err != nil {
				t.Fatalf("Failed to create BadgerStore: %v", err)
			}
			return store
		},
	}

	suite.Run(t)
}

// TestBadgerStorePersistence verifies that a badger store reopened from
// the same directory still serves previously committed entries.
func TestBadgerStorePersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(Config{Path: dir})
	if err != nil {
		t.Fatalf("Failed to create BadgerStore: %v", err)
	}

	ctx := context.Background()
	if _, err := store.CreateSandbox(ctx, "Persist", "persist"); err != nil {
		t.Fatalf("CreateSandbox failed: %v", err)
	}
	res, err := store.ReserveWrite(ctx, "persist", "/file.txt", "file.txt", "/", 5)
	if err != nil {
		t.Fatalf("ReserveWrite failed: %v", err)
	}
	if _, err := store.CommitWrite(ctx, res.EntryID, 5); err != nil {
		t.Fatalf("CommitWrite failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadgerStore(Config{Path: dir})
	if err != nil {
		t.Fatalf("Failed to reopen BadgerStore: %v", err)
	}
	defer reopened.Close()

	e, err := reopened.Stat(ctx, "persist", "/file.txt")
	if err != nil {
		t.Fatalf("Stat after reopen failed: %v", err)
	}
	if e.ID != res.EntryID {
		t.Errorf("Expected entry %s after reopen, got %s", res.EntryID, e.ID)
	}
	if _, err := reopened.GetSandbox(ctx, "persist"); err != nil {
		t.Errorf("GetSandbox after reopen failed: %v", err)
	}
}
