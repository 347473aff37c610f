package dav

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/internal/pathutil"
	"github.com/wantpinow/sandboxdav/pkg/blob"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// allowedMethods is the static capability set announced by OPTIONS and by
// 405 responses.
const allowedMethods = "OPTIONS, PROPFIND, GET, HEAD, PUT, MKCOL, MOVE, DELETE"

// Handler serves the WebDAV surface for all tenants. It holds the two store
// gateways and no per-request state; it is safe for concurrent use.
type Handler struct {
	meta      metadata.Store
	blobs     blob.Store
	maxUpload int64
}

// NewHandler builds a Handler over the given stores. maxUpload bounds the
// PUT request body in bytes; zero or negative disables the limit.
func NewHandler(meta metadata.Store, blobs blob.Store, maxUpload int64) *Handler {
	return &Handler{meta: meta, blobs: blobs, maxUpload: maxUpload}
}

// ServeHTTP resolves the tenant from the first path segment, validates it
// exists, and dispatches to the verb handler with the normalized file path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenant, filePath, ok := splitTenantPath(r.URL.EscapedPath())
	if !ok {
		http.Error(w, "Missing sandbox ID in URL. Use /{sandboxId}/path", http.StatusBadRequest)
		return
	}

	if _, err := h.meta.GetSandbox(r.Context(), tenant); err != nil {
		if metadata.IsNotFound(err) {
			http.Error(w, fmt.Sprintf("Sandbox %q not found", tenant), http.StatusNotFound)
			return
		}
		h.writeStoreError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodOptions:
		h.handleOptions(w, r)
	case "PROPFIND":
		h.handlePropfind(w, r, tenant, filePath)
	case http.MethodGet:
		h.handleGet(w, r, tenant, filePath)
	case http.MethodHead:
		h.handleHead(w, r, tenant, filePath)
	case http.MethodPut:
		h.handlePut(w, r, tenant, filePath)
	case "MKCOL":
		h.handleMkcol(w, r, tenant, filePath)
	case "MOVE":
		h.handleMove(w, r, tenant, filePath)
	case http.MethodDelete:
		h.handleDelete(w, r, tenant, filePath)
	default:
		w.Header().Set("Allow", allowedMethods)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// splitTenantPath parses "/{tenant}/{path...}" into its parts. fullPath is
// the still-escaped request path; Normalize percent-decodes it exactly once
// here, so a client-escaped name like a%2520b.txt lands at /a%20b.txt. The
// file path defaults to root when only the tenant segment is present. ok is
// false when no tenant segment exists at all.
func splitTenantPath(fullPath string) (tenant, filePath string, ok bool) {
	p := pathutil.Normalize(fullPath)
	trimmed := strings.TrimPrefix(p, "/")
	if trimmed == "" {
		return "", "", false
	}

	idx := strings.Index(trimmed, "/")
	if idx == -1 {
		return trimmed, pathutil.Root, true
	}

	// The remainder of an already-normalized path is itself normalized.
	return trimmed[:idx], trimmed[idx:], true
}

// writeStoreError maps a store-layer error onto an HTTP status. Domain
// errors carry their own category; anything else is an upstream failure.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := metadata.CodeOf(err)
	if !ok {
		return
	}

	var status int
	switch code {
	case metadata.ErrNotFound:
		status = http.StatusNotFound
	case metadata.ErrConflict, metadata.ErrInvalidState, metadata.ErrAlreadyExists:
		status = http.StatusConflict
	case metadata.ErrInvalidArgument:
		status = http.StatusBadRequest
	case metadata.ErrIOError:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	}
	http.Error(w, err.Error(), status)
}
