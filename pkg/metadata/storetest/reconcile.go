package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// RunReconcileTests executes stranded-reservation tests.
func (suite *StoreTestSuite) RunReconcileTests(t *testing.T) {
	t.Run("ListPendingBefore", suite.testListPendingBefore)
	t.Run("ListPendingExcludesCommitted", suite.testListPendingExcludesCommitted)
	t.Run("TombstonePending", suite.testTombstonePending)
	t.Run("TombstoneReadyRejected", suite.testTombstoneReadyRejected)
	t.Run("TombstoneUnknownRejected", suite.testTombstoneUnknownRejected)
}

func (suite *StoreTestSuite) testListPendingBefore(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	res, err := store.ReserveWrite(ctx, "tenant-a", "/stranded.txt", "stranded.txt", "/", 10)
	require.NoError(t, err)

	// A cutoff in the future catches the fresh reservation.
	pending, err := store.ListPendingBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, res.EntryID, pending[0].ID)
	require.Equal(t, metadata.StatusPending, pending[0].Status)

	// A cutoff in the past catches nothing.
	pending, err = store.ListPendingBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Empty(t, pending)
}

func (suite *StoreTestSuite) testListPendingExcludesCommitted(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	writeTestFile(t, store, "tenant-a", "/done.txt", "done.txt", "/", 10)
	res, err := store.ReserveWrite(ctx, "tenant-a", "/stuck.txt", "stuck.txt", "/", 10)
	require.NoError(t, err)

	pending, err := store.ListPendingBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, res.EntryID, pending[0].ID)
}

func (suite *StoreTestSuite) testTombstonePending(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	res, err := store.ReserveWrite(ctx, "tenant-a", "/stuck.txt", "stuck.txt", "/", 10)
	require.NoError(t, err)

	err = store.TombstoneEntry(ctx, res.EntryID)
	require.NoError(t, err)

	pending, err := store.ListPendingBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, pending)

	// A tombstoned reservation can no longer commit.
	_, err = store.CommitWrite(ctx, res.EntryID, 10)
	AssertErrorCode(t, metadata.ErrInvalidState, err)
}

func (suite *StoreTestSuite) testTombstoneReadyRejected(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")
	e := writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)

	err := store.TombstoneEntry(context.Background(), e.ID)
	AssertErrorCode(t, metadata.ErrInvalidState, err)
}

func (suite *StoreTestSuite) testTombstoneUnknownRejected(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.TombstoneEntry(context.Background(), "no-such-id")
	AssertErrorCode(t, metadata.ErrInvalidState, err)
}

// RunHealthcheckTests executes lifecycle tests.
func (suite *StoreTestSuite) RunHealthcheckTests(t *testing.T) {
	t.Run("Healthy", suite.testHealthcheckHealthy)
	t.Run("CancelledContext", suite.testHealthcheckCancelledContext)
}

func (suite *StoreTestSuite) testHealthcheckHealthy(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	require.NoError(t, store.Healthcheck(context.Background()))
}

func (suite *StoreTestSuite) testHealthcheckCancelledContext(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, store.Healthcheck(ctx))
}
