package dav

import (
	"fmt"
	"net/http"
	"strconv"
)

// handleHead reports a resource's metadata without touching the blob store.
// Files additionally advertise their size and range capability.
func (h *Handler) handleHead(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	entry, err := h.meta.Stat(r.Context(), tenant, filePath)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Last-Modified", httpDate(entry.Mtime))
	w.Header().Set("ETag", fmt.Sprintf(`"v%d"`, entry.Version))

	if !entry.IsDir() {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.FormatInt(entry.Size, 10))
		w.Header().Set("Accept-Ranges", "bytes")
	}

	w.WriteHeader(http.StatusOK)
}
