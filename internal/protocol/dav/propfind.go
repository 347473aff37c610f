package dav

import (
	"net/http"
	"strconv"

	"github.com/wantpinow/sandboxdav/internal/pathutil"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// handlePropfind lists a resource and, at depth 1, its immediate children.
//
// Depth "0" means self only; every other value (including "infinity") is
// treated as 1. The root path is an implicit directory that always exists
// even when no entry backs it. Hrefs are tenant-qualified since clients
// mount /{tenant}/ as their base.
func (h *Handler) handlePropfind(w http.ResponseWriter, r *http.Request, tenant, filePath string) {
	depth := r.Header.Get("Depth")

	var entries []multistatusEntry

	if filePath == pathutil.Root {
		entries = append(entries, multistatusEntry{Href: hrefFor(tenant, pathutil.Root), Meta: nil})

		if depth != "0" {
			children, err := h.meta.ListChildren(r.Context(), tenant, pathutil.Root)
			if err != nil {
				h.writeStoreError(w, r, err)
				return
			}
			entries = appendChildren(entries, tenant, children)
		}
	} else {
		entry, err := h.meta.Stat(r.Context(), tenant, filePath)
		if err != nil {
			h.writeStoreError(w, r, err)
			return
		}

		entries = append(entries, multistatusEntry{Href: hrefFor(tenant, entry.Path), Meta: entry})

		if entry.IsDir() && depth != "0" {
			children, err := h.meta.ListChildren(r.Context(), tenant, entry.Path)
			if err != nil {
				h.writeStoreError(w, r, err)
				return
			}
			entries = appendChildren(entries, tenant, children)
		}
	}

	body, err := multistatusBody(entries)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusMultiStatus)
	w.Write(body)
}

func appendChildren(entries []multistatusEntry, tenant string, children []metadata.FileEntry) []multistatusEntry {
	for i := range children {
		child := &children[i]
		entries = append(entries, multistatusEntry{Href: hrefFor(tenant, child.Path), Meta: child})
	}
	return entries
}

// hrefFor builds the externally visible URL path for a tenant-relative file
// path.
func hrefFor(tenant, filePath string) string {
	if filePath == pathutil.Root {
		return "/" + tenant + "/"
	}
	return "/" + tenant + filePath
}
