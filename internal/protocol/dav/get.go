package dav

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/pkg/blob"
)

// handleGet serves file content, optionally as a byte range.
//
// Directories are not readable (405); a ready file entry without an object
// key means the two stores have drifted apart and is reported as an internal
// error. The blob body streams straight to the response without buffering.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	entry, err := h.meta.Stat(r.Context(), tenant, filePath)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	if entry.IsDir() {
		http.Error(w, "Cannot GET a directory", http.StatusMethodNotAllowed)
		return
	}
	if entry.ObjectKey == "" {
		logger.Error("GET %s: ready file entry %s has no object key", r.URL.Path, entry.ID)
		http.Error(w, "Entry has no content", http.StatusInternalServerError)
		return
	}

	rng := parseRange(r.Header.Get("Range"), entry.Size)

	body, length, err := h.blobs.Get(r.Context(), entry.ObjectKey, rng)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			logger.Error("GET %s: object %s missing for ready entry %s", r.URL.Path, entry.ObjectKey, entry.ID)
			http.Error(w, "Content not found in object store", http.StatusInternalServerError)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Last-Modified", httpDate(entry.Mtime))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("ETag", fmt.Sprintf(`"v%d"`, entry.Version))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))

	if rng != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, entry.Size))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if _, err := io.Copy(w, body); err != nil {
		// Headers are out; all we can do is drop the connection.
		logger.Warn("GET %s: streaming aborted: %v", r.URL.Path, err)
	}
}
