package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/internal/server"
	"github.com/wantpinow/sandboxdav/pkg/config"
	"github.com/wantpinow/sandboxdav/pkg/reconcile"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	initConfig := flag.Bool("init", false, "Write a default config file and exit")
	force := flag.Bool("force", false, "Overwrite an existing config file with -init")
	flag.Parse()

	if *initConfig {
		path, err := config.InitConfig(*force)
		if err != nil {
			log.Fatalf("Failed to initialize config: %v", err)
		}
		fmt.Printf("Config file written to %s\n", path)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("sandboxdav - multi-tenant WebDAV file server")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	meta, err := config.CreateMetadataStore(ctx, &cfg.Metadata)
	if err != nil {
		log.Fatalf("Failed to create metadata store: %v", err)
	}
	defer meta.Close()

	blobs, err := config.CreateBlobStore(ctx, &cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	reconciler := reconcile.NewReconciler(meta, blobs, reconcile.Config{
		Enabled:  cfg.Reconcile.Enabled,
		Interval: cfg.Reconcile.Interval,
		MaxAge:   cfg.Reconcile.MaxAge,
	})
	reconciler.Start()

	logger.Info("Server configuration:")
	logger.Info("  Listen address: %s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("  Read timeout: %v", cfg.Server.ReadTimeout)
	logger.Info("  Write timeout: %v", cfg.Server.WriteTimeout)
	logger.Info("  Idle timeout: %v", cfg.Server.IdleTimeout)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)
	logger.Info("  Max upload size: %d bytes", cfg.Server.MaxUploadBytes)

	srv := server.New(cfg.Server, meta, blobs)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on port %d. Press Ctrl+C to stop.", cfg.Server.Port)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := reconciler.Stop(stopCtx); err != nil {
		logger.Warn("Reconciler did not stop cleanly: %v", err)
	}
}
