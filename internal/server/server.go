// Package server wires the protocol and admin handlers into an http.Server
// with timeouts, access logging, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/wantpinow/sandboxdav/internal/admin"
	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/internal/protocol/dav"
	"github.com/wantpinow/sandboxdav/pkg/blob"
	"github.com/wantpinow/sandboxdav/pkg/config"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// Server is the HTTP front of the file server. One listener carries three
// surfaces: the WebDAV tree under /{tenant}/, the admin JSON API under
// /_admin/, and a health probe at /_healthz. The reserved prefixes cannot
// collide with tenants because underscore is outside the slug alphabet.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
	meta       metadata.Store
	blobs      blob.Store
}

// New builds a Server over the given stores.
func New(cfg config.ServerConfig, meta metadata.Store, blobs blob.Store) *Server {
	s := &Server{cfg: cfg, meta: meta, blobs: blobs}

	mux := http.NewServeMux()
	mux.Handle(admin.Prefix, admin.NewHandler(meta))
	mux.HandleFunc("/_healthz", s.handleHealthz)
	mux.Handle("/", dav.NewHandler(meta, blobs, cfg.MaxUploadBytes))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      accessLog(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Serve runs the server until ctx is cancelled, then drains connections for
// at most the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	logger.Info("HTTP server listening on %s", listener.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown did not complete cleanly: %w", err)
	}
	return nil
}

// handleHealthz probes both backing stores.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.meta.Healthcheck(r.Context()); err != nil {
		logger.Warn("healthcheck: metadata store unhealthy: %v", err)
		http.Error(w, "metadata store unhealthy", http.StatusServiceUnavailable)
		return
	}
	if err := s.blobs.Healthcheck(r.Context()); err != nil {
		logger.Warn("healthcheck: blob store unhealthy: %v", err)
		http.Error(w, "blob store unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}
