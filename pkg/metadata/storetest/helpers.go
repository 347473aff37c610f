package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// createTestSandbox creates a sandbox and fails the test on error.
func createTestSandbox(t *testing.T, store metadata.Store, slug string) *metadata.Sandbox {
	t.Helper()

	sb, err := store.CreateSandbox(context.Background(), "Test "+slug, slug)
	require.NoError(t, err)
	require.NotNil(t, sb)
	return sb
}

// createTestDirectory creates a ready directory entry under the tenant.
func createTestDirectory(t *testing.T, store metadata.Store, tenant, path, name, parentPath string) *metadata.FileEntry {
	t.Helper()

	e, err := store.EnsureDirectory(context.Background(), tenant, path, name, parentPath)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

// writeTestFile runs the full two-phase write and returns the ready entry.
func writeTestFile(t *testing.T, store metadata.Store, tenant, path, name, parentPath string, size int64) *metadata.FileEntry {
	t.Helper()

	ctx := context.Background()
	res, err := store.ReserveWrite(ctx, tenant, path, name, parentPath, size)
	require.NoError(t, err)
	require.NotNil(t, res)

	e, err := store.CommitWrite(ctx, res.EntryID, size)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e
}

// AssertErrorCode asserts that err carries the expected StoreError code.
func AssertErrorCode(t *testing.T, expected metadata.ErrorCode, err error, msgAndArgs ...any) bool {
	t.Helper()

	if err == nil {
		return assert.Fail(t, "Expected an error but got nil", msgAndArgs...)
	}

	code, ok := metadata.CodeOf(err)
	if !ok {
		return assert.Fail(t, "Expected a StoreError, got: "+err.Error(), msgAndArgs...)
	}
	return assert.Equal(t, expected, code, msgAndArgs...)
}

// entryNames extracts the Name field from a listing, preserving order.
func entryNames(entries []metadata.FileEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
