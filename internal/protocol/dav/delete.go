package dav

import (
	"net/http"

	"github.com/wantpinow/sandboxdav/internal/pathutil"
)

// handleDelete tombstones a resource. Deleting an absent path is a no-op
// and still answers 204. Deleting a directory cascades to its immediate
// ready children only; entries nested deeper keep their ready status and
// become unreachable (see metadata.Store.SoftDelete).
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	if filePath == pathutil.Root {
		http.Error(w, "Cannot delete root", http.StatusForbidden)
		return
	}

	if err := h.meta.SoftDelete(r.Context(), tenant, filePath); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusNoContent)
}
