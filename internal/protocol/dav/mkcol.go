package dav

import (
	"net/http"

	"github.com/wantpinow/sandboxdav/internal/pathutil"
)

// handleMkcol creates a directory. Creation is idempotent; repeating it on
// an existing directory succeeds with the same entry. A ready file at the
// path is a conflict.
func (h *Handler) handleMkcol(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	if filePath == pathutil.Root {
		http.Error(w, "Root directory already exists", http.StatusMethodNotAllowed)
		return
	}

	name := pathutil.BaseName(filePath)
	parentPath := pathutil.ParentOf(filePath)

	if _, err := h.meta.EnsureDirectory(r.Context(), tenant, filePath, name, parentPath); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusCreated)
}
