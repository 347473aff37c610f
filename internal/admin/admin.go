// Package admin exposes sandbox administration as a small JSON API.
//
// It is mounted under /_admin/, a prefix that can never collide with tenant
// slugs because underscore is outside the slug alphabet. There is no
// authentication; deployments are expected to keep the admin surface off the
// public listener or behind a fronting proxy.
package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// Prefix is the URL prefix the admin API is served under.
const Prefix = "/_admin/"

// Handler serves the sandbox administration endpoints.
type Handler struct {
	meta metadata.Store
}

// NewHandler builds an admin Handler over the metadata store.
func NewHandler(meta metadata.Store) *Handler {
	return &Handler{meta: meta}
}

// createRequest is the POST /_admin/sandboxes body.
type createRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, Prefix)
	if !ok || (rest != "sandboxes" && !strings.HasPrefix(rest, "sandboxes/")) {
		h.writeError(w, http.StatusNotFound, "unknown admin endpoint")
		return
	}
	rest = strings.Trim(strings.TrimPrefix(rest, "sandboxes"), "/")

	switch {
	case r.Method == http.MethodGet && rest == "":
		h.list(w, r)
	case r.Method == http.MethodPost && rest == "":
		h.create(w, r)
	case r.Method == http.MethodDelete && rest != "":
		h.remove(w, r, rest)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// list returns all sandboxes, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sandboxes, err := h.meta.ListSandboxes(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if sandboxes == nil {
		sandboxes = []metadata.Sandbox{}
	}
	h.writeJSON(w, http.StatusOK, sandboxes)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sandbox, err := h.meta.CreateSandbox(r.Context(), req.Name, req.Slug)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	logger.Info("created sandbox %q (%s)", sandbox.Slug, sandbox.Name)
	h.writeJSON(w, http.StatusCreated, sandbox)
}

// remove hard-deletes the sandbox record and tombstones every entry scoped
// to it.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request, slug string) {
	if err := h.meta.RemoveSandbox(r.Context(), slug); err != nil {
		h.writeStoreError(w, err)
		return
	}

	logger.Info("removed sandbox %q", slug)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("admin: failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	code, ok := metadata.CodeOf(err)
	if !ok {
		return
	}

	var status int
	switch code {
	case metadata.ErrNotFound:
		status = http.StatusNotFound
	case metadata.ErrAlreadyExists, metadata.ErrConflict:
		status = http.StatusConflict
	case metadata.ErrInvalidArgument:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		logger.Error("admin: %v", err)
	}
	h.writeError(w, status, err.Error())
}
