package dav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	blobmem "github.com/wantpinow/sandboxdav/pkg/blob/memory"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
	metamem "github.com/wantpinow/sandboxdav/pkg/metadata/memory"
)

const testTenant = "tenant-a"

func newTestHandler(t *testing.T) (*Handler, metadata.Store, *blobmem.MemoryBlobStore) {
	t.Helper()

	meta := metamem.NewMemoryStore()
	blobs := blobmem.NewMemoryBlobStore()
	t.Cleanup(func() { meta.Close() })

	_, err := meta.CreateSandbox(context.Background(), "Tenant A", testTenant)
	require.NoError(t, err)

	return NewHandler(meta, blobs, 0), meta, blobs
}

func doRequest(h *Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Router
// ============================================================================

func TestRouterMissingTenant(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterUnknownTenant(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodGet, "/no-such-tenant/file.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterUnknownMethod(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "PATCH", "/tenant-a/file.txt", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, allowedMethods, rec.Header().Get("Allow"))
}

func TestRouterRemovedTenantHidesFiles(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/file.txt", "data", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, meta.RemoveSandbox(context.Background(), testTenant))

	rec = doRequest(h, http.MethodGet, "/tenant-a/file.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// OPTIONS
// ============================================================================

func TestOptions(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodOptions, "/tenant-a/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("DAV"))
	assert.Equal(t, allowedMethods, rec.Header().Get("Allow"))
	assert.Equal(t, "0", rec.Header().Get("Content-Length"))
}

// ============================================================================
// PUT / GET round trips
// ============================================================================

func TestPutThenGet(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/docs/a.txt", "hello world", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `"tenant-a/docs/a.txt::v1"`, rec.Header().Get("ETag"))

	rec = doRequest(h, http.MethodGet, "/tenant-a/docs/a.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
}

func TestPutOverwriteBumpsVersion(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "first", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	firstETag := rec.Header().Get("ETag")

	rec = doRequest(h, http.MethodPut, "/tenant-a/a.txt", "second version here", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `"tenant-a/a.txt::v2"`, rec.Header().Get("ETag"))
	assert.NotEqual(t, firstETag, rec.Header().Get("ETag"))

	rec = doRequest(h, http.MethodGet, "/tenant-a/a.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "second version here", rec.Body.String())
	assert.Equal(t, `"v2"`, rec.Header().Get("ETag"))
}

func TestPutRootRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/", "data", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPutOverDirectoryConflicts(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodPut, "/tenant-a/docs", "data", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPutBodyTooLarge(t *testing.T) {
	meta := metamem.NewMemoryStore()
	t.Cleanup(func() { meta.Close() })
	_, err := meta.CreateSandbox(context.Background(), "Tenant A", testTenant)
	require.NoError(t, err)

	h := NewHandler(meta, blobmem.NewMemoryBlobStore(), 8)

	rec := doRequest(h, http.MethodPut, "/tenant-a/big.bin", strings.Repeat("x", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPathDecodedExactlyOnce(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	// A file literally named "a%20b.txt" arrives with its percent sign
	// escaped on the wire. One level of decoding must survive into the
	// stored path; a second decode would collapse it to "a b.txt".
	rec := doRequest(h, http.MethodPut, "/tenant-a/a%2520b.txt", "data", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	entry, err := meta.Stat(context.Background(), testTenant, "/a%20b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a%20b.txt", entry.Name)

	rec = doRequest(h, http.MethodGet, "/tenant-a/a%2520b.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data", rec.Body.String())

	rec = doRequest(h, "PROPFIND", "/tenant-a/a%2520b.txt", "", map[string]string{"Depth": "0"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Contains(t, rec.Body.String(), "<d:displayname>a%20b.txt</d:displayname>")
}

func TestEscapedSpaceInName(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a%20b.txt", "data", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	entry, err := meta.Stat(context.Background(), testTenant, "/a b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a b.txt", entry.Name)

	rec = doRequest(h, http.MethodGet, "/tenant-a/a%20b.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data", rec.Body.String())
}

func TestGetDirectoryRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/docs", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetAbsent(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodGet, "/tenant-a/nope.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// Range reads
// ============================================================================

func TestGetRangeRequests(t *testing.T) {
	h, _, _ := newTestHandler(t)

	content := strings.Repeat("0123456789", 100) // 1000 bytes
	rec := doRequest(h, http.MethodPut, "/tenant-a/big.bin", content, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("Bounded", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/tenant-a/big.bin", "", map[string]string{"Range": "bytes=0-499"})
		require.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "bytes 0-499/1000", rec.Header().Get("Content-Range"))
		assert.Equal(t, content[:500], rec.Body.String())
	})

	t.Run("OpenEnded", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/tenant-a/big.bin", "", map[string]string{"Range": "bytes=900-"})
		require.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "bytes 900-999/1000", rec.Header().Get("Content-Range"))
		assert.Equal(t, content[900:], rec.Body.String())
	})

	t.Run("Suffix", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/tenant-a/big.bin", "", map[string]string{"Range": "bytes=-100"})
		require.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "bytes 900-999/1000", rec.Header().Get("Content-Range"))
		assert.Equal(t, content[900:], rec.Body.String())
	})

	t.Run("StartBeyondSizeFallsBackToFull", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/tenant-a/big.bin", "", map[string]string{"Range": "bytes=5000-"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Range"))
		assert.Len(t, rec.Body.String(), 1000)
	})

	t.Run("UnparseableFallsBackToFull", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/tenant-a/big.bin", "", map[string]string{"Range": "bytes=oops"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Body.String(), 1000)
	})
}

// ============================================================================
// HEAD
// ============================================================================

func TestHeadFile(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "hello", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodHead, "/tenant-a/a.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))
	assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
}

func TestHeadDirectory(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodHead, "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))
	assert.Empty(t, rec.Header().Get("Accept-Ranges"))
}

func TestHeadAbsent(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodHead, "/tenant-a/nope.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// MKCOL
// ============================================================================

func TestMkcolIdempotent(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	first, err := meta.Stat(context.Background(), testTenant, "/docs")
	require.NoError(t, err)

	rec = doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	second, err := meta.Stat(context.Background(), testTenant, "/docs")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestMkcolRootRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMkcolOverFileConflicts(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/thing", "data", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "MKCOL", "/tenant-a/thing", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ============================================================================
// MOVE
// ============================================================================

func TestMoveMissingDestination(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MOVE", "/tenant-a/a.txt", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoveBarePath(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "MOVE", "/tenant-a/a.txt", "", map[string]string{"Destination": "/docs/b.txt"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/docs/b.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content", rec.Body.String())

	rec = doRequest(h, http.MethodGet, "/tenant-a/a.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMoveFullURLDestination(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	dest := "http://localhost:8080/tenant-a/b.txt"
	rec = doRequest(h, "MOVE", "/tenant-a/a.txt", "", map[string]string{"Destination": dest})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/b.txt", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMoveTenantPrefixedBarePath(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "MOVE", "/tenant-a/a.txt", "", map[string]string{"Destination": "/tenant-a/c.txt"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/c.txt", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMoveEscapedDestinationDecodedOnce(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The destination names a file literally called "a%20b.txt"; the URL
	// carries the percent sign escaped. One decode must survive.
	dest := "http://localhost:8080/tenant-a/a%2520b.txt"
	rec = doRequest(h, "MOVE", "/tenant-a/a.txt", "", map[string]string{"Destination": dest})
	require.Equal(t, http.StatusCreated, rec.Code)

	entry, err := meta.Stat(context.Background(), testTenant, "/a%20b.txt")
	require.NoError(t, err)
	assert.Equal(t, "a%20b.txt", entry.Name)
}

func TestMoveCrossTenantRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	dest := "http://localhost:8080/other-tenant/a.txt"
	rec = doRequest(h, "MOVE", "/tenant-a/a.txt", "", map[string]string{"Destination": dest})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Source untouched after the rejection.
	rec = doRequest(h, http.MethodGet, "/tenant-a/a.txt", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMoveOverwritesDestination(t *testing.T) {
	h, meta, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/src.txt", "source", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h, http.MethodPut, "/tenant-a/dst.txt", "old destination", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "MOVE", "/tenant-a/src.txt", "", map[string]string{"Destination": "/dst.txt"})
	require.Equal(t, http.StatusCreated, rec.Code)

	entry, err := meta.Stat(context.Background(), testTenant, "/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Version)

	rec = doRequest(h, http.MethodGet, "/tenant-a/dst.txt", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "source", rec.Body.String())
}

func TestMoveSourceAbsent(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MOVE", "/tenant-a/nope.txt", "", map[string]string{"Destination": "/b.txt"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteFile(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodDelete, "/tenant-a/a.txt", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/a.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodDelete, "/tenant-a/nope.txt", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteRootRejected(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodDelete, "/tenant-a/", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteDirectoryHidesChildren(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h, http.MethodPut, "/tenant-a/docs/a.txt", "content", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodDelete, "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(h, http.MethodGet, "/tenant-a/docs/a.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// PROPFIND
// ============================================================================

func TestPropfindRootDepthZero(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "PROPFIND", "/tenant-a/", "", map[string]string{"Depth": "0"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "<d:response>"))
	assert.Contains(t, body, "<d:href>/tenant-a/</d:href>")
	assert.Contains(t, body, "<d:collection/>")
}

func TestPropfindRootListsChildren(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "hello", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "PROPFIND", "/tenant-a/", "", map[string]string{"Depth": "1"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "<d:response>"))
	assert.Contains(t, body, "<d:href>/tenant-a/a.txt</d:href>")
	assert.Contains(t, body, "<d:href>/tenant-a/docs/</d:href>")
	assert.Contains(t, body, "<d:getcontentlength>5</d:getcontentlength>")
}

func TestPropfindMissingDepthTreatedAsOne(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "hello", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "PROPFIND", "/tenant-a/", "", nil)
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<d:response>"))
}

func TestPropfindInfinityTreatedAsOne(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h, http.MethodPut, "/tenant-a/docs/deep.txt", "x", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "PROPFIND", "/tenant-a/", "", map[string]string{"Depth": "infinity"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	// Root and /docs only; /docs/deep.txt is below depth 1.
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "<d:response>"))
	assert.NotContains(t, body, "deep.txt")
}

func TestPropfindSubdirectory(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "MKCOL", "/tenant-a/docs", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h, http.MethodPut, "/tenant-a/docs/a.txt", "hello", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "PROPFIND", "/tenant-a/docs", "", map[string]string{"Depth": "1"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "<d:response>"))
	assert.Contains(t, body, "<d:href>/tenant-a/docs/</d:href>")
	assert.Contains(t, body, "<d:href>/tenant-a/docs/a.txt</d:href>")
}

func TestPropfindFileDepthOne(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPut, "/tenant-a/a.txt", "hello", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, "PROPFIND", "/tenant-a/a.txt", "", map[string]string{"Depth": "1"})
	require.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<d:response>"))
}

func TestPropfindAbsent(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := doRequest(h, "PROPFIND", "/tenant-a/nope", "", map[string]string{"Depth": "0"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
