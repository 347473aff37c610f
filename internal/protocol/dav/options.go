package dav

import "net/http"

// handleOptions announces the protocol class and supported verbs. Locking
// (class 2) is not implemented, so only compliance class 1 is advertised.
func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("DAV", "1")
	w.Header().Set("Allow", allowedMethods)
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
}
