package dav

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/wantpinow/sandboxdav/internal/pathutil"
)

// handleMove renames or relocates a resource within the caller's tenant.
//
// The Destination header may be a full URL or a bare path. Full URLs must
// address the caller's own tenant; anything else is rejected. Bare paths
// whose first segment is the caller's tenant are stripped of it, other bare
// paths are taken tenant-relative as written. The moved entry keeps its
// version and object key; a ready occupant at the destination is
// tombstoned.
func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	destHeader := r.Header.Get("Destination")
	if destHeader == "" {
		http.Error(w, "Missing Destination header", http.StatusBadRequest)
		return
	}

	dstPath, ok := resolveDestination(tenant, destHeader)
	if !ok {
		http.Error(w, "Destination is outside this sandbox", http.StatusBadRequest)
		return
	}

	dstName := pathutil.BaseName(dstPath)
	dstParentPath := pathutil.ParentOf(dstPath)

	if _, err := h.meta.Move(r.Context(), tenant, filePath, dstPath, dstName, dstParentPath); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusCreated)
}

// resolveDestination turns a Destination header into a tenant-relative
// normalized path. ok is false when the destination names a different
// tenant.
func resolveDestination(tenant, header string) (string, bool) {
	if u, err := url.Parse(header); err == nil && u.IsAbs() {
		// Full URL: the path must address the caller's tenant. EscapedPath
		// keeps the wire encoding so Normalize decodes exactly once, same
		// as the request path.
		p := pathutil.Normalize(u.EscapedPath())
		rest, ok := stripTenant(p, tenant)
		if !ok {
			return "", false
		}
		return rest, true
	}

	p := pathutil.Normalize(header)
	if rest, ok := stripTenant(p, tenant); ok {
		return rest, true
	}
	return p, true
}

// stripTenant removes a leading /{tenant} segment from an already-normalized
// path. The remainder needs no further normalization. ok is false when the
// path does not start with the tenant segment.
func stripTenant(p, tenant string) (string, bool) {
	prefix := "/" + tenant
	if p == prefix {
		return pathutil.Root, true
	}
	if strings.HasPrefix(p, prefix+"/") {
		return strings.TrimPrefix(p, prefix), true
	}
	return "", false
}
