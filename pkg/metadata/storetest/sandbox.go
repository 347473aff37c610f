package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// RunSandboxTests executes all sandbox operation tests.
func (suite *StoreTestSuite) RunSandboxTests(t *testing.T) {
	t.Run("CreateAndGet", suite.testSandboxCreateAndGet)
	t.Run("CreateDuplicateSlug", suite.testSandboxCreateDuplicateSlug)
	t.Run("CreateInvalidSlug", suite.testSandboxCreateInvalidSlug)
	t.Run("GetUnknown", suite.testSandboxGetUnknown)
	t.Run("ListNewestFirst", suite.testSandboxListNewestFirst)
	t.Run("Remove", suite.testSandboxRemove)
	t.Run("RemoveTombstonesEntries", suite.testSandboxRemoveTombstonesEntries)
	t.Run("RemoveUnknown", suite.testSandboxRemoveUnknown)
}

func (suite *StoreTestSuite) testSandboxCreateAndGet(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	created, err := store.CreateSandbox(ctx, "My Sandbox", "my-sandbox")
	require.NoError(t, err)
	require.Equal(t, "My Sandbox", created.Name)
	require.Equal(t, "my-sandbox", created.Slug)
	require.False(t, created.CreatedAt.IsZero())

	got, err := store.GetSandbox(ctx, "my-sandbox")
	require.NoError(t, err)
	require.Equal(t, created.Slug, got.Slug)
	require.Equal(t, created.Name, got.Name)
}

func (suite *StoreTestSuite) testSandboxCreateDuplicateSlug(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "taken")

	_, err := store.CreateSandbox(ctx, "Another", "taken")
	AssertErrorCode(t, metadata.ErrAlreadyExists, err)
}

func (suite *StoreTestSuite) testSandboxCreateInvalidSlug(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	for _, slug := range []string{
		"", "ab", "UPPER", "has space", "-leading", "trailing-",
		"under_score", "way-too-long-" + strings.Repeat("x", 60),
	} {
		_, err := store.CreateSandbox(ctx, "Bad", slug)
		AssertErrorCode(t, metadata.ErrInvalidArgument, err, "slug %q", slug)
	}
}

func (suite *StoreTestSuite) testSandboxGetUnknown(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	_, err := store.GetSandbox(context.Background(), "nope")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}

func (suite *StoreTestSuite) testSandboxListNewestFirst(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	createTestSandbox(t, store, "first")
	createTestSandbox(t, store, "second")
	createTestSandbox(t, store, "third")

	list, err := store.ListSandboxes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	for i := 1; i < len(list); i++ {
		require.False(t, list[i-1].CreatedAt.Before(list[i].CreatedAt),
			"expected newest-first ordering")
	}
}

func (suite *StoreTestSuite) testSandboxRemove(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "doomed")

	err := store.RemoveSandbox(ctx, "doomed")
	require.NoError(t, err)

	_, err = store.GetSandbox(ctx, "doomed")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}

func (suite *StoreTestSuite) testSandboxRemoveTombstonesEntries(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	createTestSandbox(t, store, "doomed")
	createTestSandbox(t, store, "bystander")

	createTestDirectory(t, store, "doomed", "/docs", "docs", "/")
	writeTestFile(t, store, "doomed", "/docs/a.txt", "a.txt", "/docs", 3)
	writeTestFile(t, store, "bystander", "/keep.txt", "keep.txt", "/", 4)

	err := store.RemoveSandbox(ctx, "doomed")
	require.NoError(t, err)

	_, err = store.Stat(ctx, "doomed", "/docs")
	AssertErrorCode(t, metadata.ErrNotFound, err)
	_, err = store.Stat(ctx, "doomed", "/docs/a.txt")
	AssertErrorCode(t, metadata.ErrNotFound, err)

	// Other tenants are untouched.
	_, err = store.Stat(ctx, "bystander", "/keep.txt")
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testSandboxRemoveUnknown(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	err := store.RemoveSandbox(context.Background(), "ghost")
	AssertErrorCode(t, metadata.ErrNotFound, err)
}
