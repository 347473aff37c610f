package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// RunDirectoryTests executes directory creation and listing tests.
func (suite *StoreTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("EnsureCreates", suite.testEnsureDirectoryCreates)
	t.Run("EnsureIdempotent", suite.testEnsureDirectoryIdempotent)
	t.Run("EnsureConflictWithFile", suite.testEnsureDirectoryConflictWithFile)
	t.Run("ListChildrenSorted", suite.testListChildrenSorted)
	t.Run("ListChildrenEmpty", suite.testListChildrenEmpty)
	t.Run("ListChildrenExcludesOtherTenants", suite.testListChildrenExcludesOtherTenants)
}

// RunWriteTests executes two-phase write tests.
func (suite *StoreTestSuite) RunWriteTests(t *testing.T) {
	t.Run("ReserveThenCommit", suite.testReserveThenCommit)
	t.Run("ReserveHidesPending", suite.testReserveHidesPending)
	t.Run("OverwriteIncrementsVersion", suite.testOverwriteIncrementsVersion)
	t.Run("ReserveTombstonesPrior", suite.testReserveTombstonesPrior)
	t.Run("CommitRecordsActualSize", suite.testCommitRecordsActualSize)
	t.Run("CommitUnknownEntry", suite.testCommitUnknownEntry)
	t.Run("CommitTwice", suite.testCommitTwice)
	t.Run("RacingCommitsLastWins", suite.testRacingCommitsLastWins)
	t.Run("ObjectKeyEmbedsVersion", suite.testObjectKeyEmbedsVersion)
}

// ============================================================================
// Directory tests
// ============================================================================

func (suite *StoreTestSuite) testEnsureDirectoryCreates(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	dir := createTestDirectory(t, store, "tenant-a", "/docs", "docs", "/")
	require.True(t, dir.IsDir())
	require.Equal(t, int64(1), dir.Version)
	require.Equal(t, metadata.StatusReady, dir.Status)
	require.Empty(t, dir.ObjectKey)

	got, err := store.Stat(ctx, "tenant-a", "/docs")
	require.NoError(t, err)
	require.Equal(t, dir.ID, got.ID)
}

func (suite *StoreTestSuite) testEnsureDirectoryIdempotent(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	first := createTestDirectory(t, store, "tenant-a", "/docs", "docs", "/")
	second := createTestDirectory(t, store, "tenant-a", "/docs", "docs", "/")

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Version, second.Version)
}

func (suite *StoreTestSuite) testEnsureDirectoryConflictWithFile(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")
	writeTestFile(t, store, "tenant-a", "/notes", "notes", "/", 5)

	_, err := store.EnsureDirectory(context.Background(), "tenant-a", "/notes", "notes", "/")
	AssertErrorCode(t, metadata.ErrConflict, err)
}

func (suite *StoreTestSuite) testListChildrenSorted(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")
	createTestDirectory(t, store, "tenant-a", "/docs", "docs", "/")
	writeTestFile(t, store, "tenant-a", "/docs/zebra.txt", "zebra.txt", "/docs", 1)
	writeTestFile(t, store, "tenant-a", "/docs/apple.txt", "apple.txt", "/docs", 1)
	createTestDirectory(t, store, "tenant-a", "/docs/mango", "mango", "/docs")

	children, err := store.ListChildren(context.Background(), "tenant-a", "/docs")
	require.NoError(t, err)
	require.Equal(t, []string{"apple.txt", "mango", "zebra.txt"}, entryNames(children))
}

func (suite *StoreTestSuite) testListChildrenEmpty(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	children, err := store.ListChildren(context.Background(), "tenant-a", "/no-such-dir")
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testListChildrenExcludesOtherTenants(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")
	createTestSandbox(t, store, "tenant-b")
	writeTestFile(t, store, "tenant-a", "/a.txt", "a.txt", "/", 1)
	writeTestFile(t, store, "tenant-b", "/b.txt", "b.txt", "/", 1)

	children, err := store.ListChildren(context.Background(), "tenant-a", "/")
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, entryNames(children))
}

// ============================================================================
// Two-phase write tests
// ============================================================================

func (suite *StoreTestSuite) testReserveThenCommit(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	res, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.EntryID)
	require.Equal(t, int64(1), res.Version)
	require.Equal(t, metadata.ObjectKeyFor("tenant-a", "/file.txt", 1), res.ObjectKey)

	committed, err := store.CommitWrite(ctx, res.EntryID, 10)
	require.NoError(t, err)
	require.Equal(t, metadata.StatusReady, committed.Status)
	require.Equal(t, int64(10), committed.Size)

	got, err := store.Stat(ctx, "tenant-a", "/file.txt")
	require.NoError(t, err)
	require.Equal(t, res.EntryID, got.ID)
}

func (suite *StoreTestSuite) testReserveHidesPending(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	_, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 10)
	require.NoError(t, err)

	// Pending entries are invisible to readers.
	_, err = store.Stat(ctx, "tenant-a", "/file.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)

	children, err := store.ListChildren(ctx, "tenant-a", "/")
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testOverwriteIncrementsVersion(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	v1 := writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)
	require.Equal(t, int64(1), v1.Version)

	v2 := writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 20)
	require.Equal(t, int64(2), v2.Version)
	require.NotEqual(t, v1.ID, v2.ID)
	require.NotEqual(t, v1.ObjectKey, v2.ObjectKey)
}

func (suite *StoreTestSuite) testReserveTombstonesPrior(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)

	_, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 20)
	require.NoError(t, err)

	// The read gap: the prior version is already tombstoned and the new
	// one is not yet committed.
	_, err = store.Stat(ctx, "tenant-a", "/file.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}

func (suite *StoreTestSuite) testCommitRecordsActualSize(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	res, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 100)
	require.NoError(t, err)

	// The declared size at reservation time is advisory; commit records
	// what was actually uploaded.
	committed, err := store.CommitWrite(ctx, res.EntryID, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), committed.Size)
}

func (suite *StoreTestSuite) testCommitUnknownEntry(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	_, err := store.CommitWrite(context.Background(), "no-such-id", 10)
	AssertErrorCode(t, metadata.ErrInvalidState, err)
}

func (suite *StoreTestSuite) testCommitTwice(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	res, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 10)
	require.NoError(t, err)

	_, err = store.CommitWrite(ctx, res.EntryID, 10)
	require.NoError(t, err)

	_, err = store.CommitWrite(ctx, res.EntryID, 10)
	AssertErrorCode(t, metadata.ErrInvalidState, err)
}

func (suite *StoreTestSuite) testRacingCommitsLastWins(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	// Two reservations for the same path can coexist as pending entries.
	resA, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 10)
	require.NoError(t, err)
	resB, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 20)
	require.NoError(t, err)

	_, err = store.CommitWrite(ctx, resA.EntryID, 10)
	require.NoError(t, err)
	_, err = store.CommitWrite(ctx, resB.EntryID, 20)
	require.NoError(t, err)

	// The later commit owns visibility; at most one ready entry remains.
	got, err := store.Stat(ctx, "tenant-a", "/file.txt")
	require.NoError(t, err)
	require.Equal(t, resB.EntryID, got.ID)

	children, err := store.ListChildren(ctx, "tenant-a", "/")
	require.NoError(t, err)
	require.Len(t, children, 1)
}

func (suite *StoreTestSuite) testObjectKeyEmbedsVersion(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)

	res, err := store.ReserveWrite(ctx, "tenant-a", "/file.txt", "file.txt", "/", 20)
	require.NoError(t, err)
	require.Equal(t, "tenant-a/file.txt::v2", res.ObjectKey)
}

// ============================================================================
// Move tests
// ============================================================================

// RunMoveTests executes rename and overwrite-by-move tests.
func (suite *StoreTestSuite) RunMoveTests(t *testing.T) {
	t.Run("Rename", suite.testMoveRename)
	t.Run("VersionAndObjectKeyUnchanged", suite.testMoveKeepsVersionAndObjectKey)
	t.Run("OverwriteExisting", suite.testMoveOverwriteExisting)
	t.Run("AcrossDirectories", suite.testMoveAcrossDirectories)
	t.Run("SourceNotFound", suite.testMoveSourceNotFound)
}

func (suite *StoreTestSuite) testMoveRename(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	orig := writeTestFile(t, store, "tenant-a", "/old.txt", "old.txt", "/", 10)

	moved, err := store.Move(ctx, "tenant-a", "/old.txt", "/new.txt", "new.txt", "/")
	require.NoError(t, err)
	require.Equal(t, orig.ID, moved.ID)
	require.Equal(t, "/new.txt", moved.Path)
	require.Equal(t, "new.txt", moved.Name)

	_, err = store.Stat(ctx, "tenant-a", "/old.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)

	got, err := store.Stat(ctx, "tenant-a", "/new.txt")
	require.NoError(t, err)
	require.Equal(t, orig.ID, got.ID)
}

func (suite *StoreTestSuite) testMoveKeepsVersionAndObjectKey(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	// Write twice so the version is distinguishable from 1.
	writeTestFile(t, store, "tenant-a", "/old.txt", "old.txt", "/", 10)
	orig := writeTestFile(t, store, "tenant-a", "/old.txt", "old.txt", "/", 20)
	require.Equal(t, int64(2), orig.Version)

	moved, err := store.Move(context.Background(), "tenant-a", "/old.txt", "/new.txt", "new.txt", "/")
	require.NoError(t, err)

	// The blob stays where it was uploaded; only the metadata moves.
	require.Equal(t, orig.Version, moved.Version)
	require.Equal(t, orig.ObjectKey, moved.ObjectKey)
}

func (suite *StoreTestSuite) testMoveOverwriteExisting(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	src := writeTestFile(t, store, "tenant-a", "/src.txt", "src.txt", "/", 10)
	writeTestFile(t, store, "tenant-a", "/dst.txt", "dst.txt", "/", 20)

	moved, err := store.Move(ctx, "tenant-a", "/src.txt", "/dst.txt", "dst.txt", "/")
	require.NoError(t, err)
	require.Equal(t, src.ID, moved.ID)

	got, err := store.Stat(ctx, "tenant-a", "/dst.txt")
	require.NoError(t, err)
	require.Equal(t, src.ID, got.ID)

	children, err := store.ListChildren(ctx, "tenant-a", "/")
	require.NoError(t, err)
	require.Len(t, children, 1)
}

func (suite *StoreTestSuite) testMoveAcrossDirectories(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	createTestDirectory(t, store, "tenant-a", "/a", "a", "/")
	createTestDirectory(t, store, "tenant-a", "/b", "b", "/")
	writeTestFile(t, store, "tenant-a", "/a/file.txt", "file.txt", "/a", 10)

	_, err := store.Move(ctx, "tenant-a", "/a/file.txt", "/b/file.txt", "file.txt", "/b")
	require.NoError(t, err)

	fromA, err := store.ListChildren(ctx, "tenant-a", "/a")
	require.NoError(t, err)
	require.Empty(t, fromA)

	fromB, err := store.ListChildren(ctx, "tenant-a", "/b")
	require.NoError(t, err)
	require.Equal(t, []string{"file.txt"}, entryNames(fromB))
}

func (suite *StoreTestSuite) testMoveSourceNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	_, err := store.Move(context.Background(), "tenant-a", "/ghost.txt", "/new.txt", "new.txt", "/")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}

// ============================================================================
// Delete tests
// ============================================================================

// RunDeleteTests executes soft-delete tests.
func (suite *StoreTestSuite) RunDeleteTests(t *testing.T) {
	t.Run("File", suite.testDeleteFile)
	t.Run("AbsentIsNoOp", suite.testDeleteAbsentIsNoOp)
	t.Run("DirectoryCascadesOneLevel", suite.testDeleteDirectoryCascadesOneLevel)
	t.Run("RecreateAfterDelete", suite.testRecreateAfterDelete)
}

func (suite *StoreTestSuite) testDeleteFile(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)

	err := store.SoftDelete(ctx, "tenant-a", "/file.txt")
	require.NoError(t, err)

	_, err = store.Stat(ctx, "tenant-a", "/file.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}

func (suite *StoreTestSuite) testDeleteAbsentIsNoOp(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "tenant-a")

	err := store.SoftDelete(context.Background(), "tenant-a", "/ghost.txt")
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testDeleteDirectoryCascadesOneLevel(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")
	createTestDirectory(t, store, "tenant-a", "/docs", "docs", "/")
	writeTestFile(t, store, "tenant-a", "/docs/a.txt", "a.txt", "/docs", 10)
	createTestDirectory(t, store, "tenant-a", "/docs/sub", "sub", "/docs")
	writeTestFile(t, store, "tenant-a", "/docs/sub/deep.txt", "deep.txt", "/docs/sub", 10)

	err := store.SoftDelete(ctx, "tenant-a", "/docs")
	require.NoError(t, err)

	_, err = store.Stat(ctx, "tenant-a", "/docs")
	AssertErrorCode(t, metadata.ErrNotFound, err)
	_, err = store.Stat(ctx, "tenant-a", "/docs/a.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)
	_, err = store.Stat(ctx, "tenant-a", "/docs/sub")
	AssertErrorCode(t, metadata.ErrNotFound, err)

	// The cascade stops at the first level: grandchildren stay ready and
	// become unreachable through listing.
	deep, err := store.Stat(ctx, "tenant-a", "/docs/sub/deep.txt")
	require.NoError(t, err)
	require.Equal(t, metadata.StatusReady, deep.Status)
}

func (suite *StoreTestSuite) testRecreateAfterDelete(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "tenant-a")

	first := writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 10)
	err := store.SoftDelete(ctx, "tenant-a", "/file.txt")
	require.NoError(t, err)

	second := writeTestFile(t, store, "tenant-a", "/file.txt", "file.txt", "/", 20)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, int64(1), second.Version, "versions restart once no ready entry remains")
}
