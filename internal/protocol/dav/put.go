package dav

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wantpinow/sandboxdav/internal/pathutil"
)

// handlePut writes file content with the two-phase protocol: reserve a
// pending metadata entry, upload the blob under the reserved key, then
// commit with the actual byte count.
//
// The whole body is buffered before any store interaction; there is no
// streaming upload. A failure after the reservation strands a pending entry
// for the reconciler rather than rolling back.
func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	if filePath == pathutil.Root {
		http.Error(w, "Cannot write to root", http.StatusForbidden)
		return
	}

	// Writing a file over a ready directory is a conflict. The reservation
	// itself would happily tombstone the directory, so the check lives here.
	if entry, err := h.meta.Stat(r.Context(), tenant, filePath); err == nil && entry.IsDir() {
		http.Error(w, "Path is a directory", http.StatusConflict)
		return
	}

	reader := r.Body
	if h.maxUpload > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	name := pathutil.BaseName(filePath)
	parentPath := pathutil.ParentOf(filePath)

	res, err := h.meta.ReserveWrite(r.Context(), tenant, filePath, name, parentPath, int64(len(body)))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	if err := h.blobs.Put(r.Context(), res.ObjectKey, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if _, err := h.meta.CommitWrite(r.Context(), res.EntryID, int64(len(body))); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Length", "0")
	w.Header().Set("ETag", fmt.Sprintf("%q", res.ObjectKey))
	w.WriteHeader(http.StatusCreated)
}
