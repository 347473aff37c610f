package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

metadata:
  type: "memory"

blob:
  type: "memory"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Reconcile.Interval != 10*time.Minute {
		t.Errorf("Expected default reconcile interval 10m, got %v", cfg.Reconcile.Interval)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Use a temporary directory with a non-existent config file path so we
	// don't pick up a real config from ~/.config/sandboxdav/
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Metadata.Type != "memory" {
		t.Errorf("Expected default metadata type 'memory', got %q", cfg.Metadata.Type)
	}
	if cfg.Blob.Type != "memory" {
		t.Errorf("Expected default blob type 'memory', got %q", cfg.Blob.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("logging: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error loading invalid YAML, got nil")
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"
  output: "stderr"

server:
  port: 9999
  shutdown_timeout: 5s

metadata:
  type: "badger"
  badger:
    path: "/tmp/test-metadata"

blob:
  type: "memory"

reconcile:
  enabled: true
  interval: 1m
  max_age: 30m
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Level is normalized to uppercase
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected output 'stderr', got %q", cfg.Logging.Output)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown_timeout 5s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Metadata.Type != "badger" {
		t.Errorf("Expected metadata type 'badger', got %q", cfg.Metadata.Type)
	}
	if path := cfg.Metadata.Badger["path"]; path != "/tmp/test-metadata" {
		t.Errorf("Expected badger path '/tmp/test-metadata', got %v", path)
	}
	if !cfg.Reconcile.Enabled {
		t.Error("Expected reconcile to be enabled")
	}
	if cfg.Reconcile.MaxAge != 30*time.Minute {
		t.Errorf("Expected reconcile max_age 30m, got %v", cfg.Reconcile.MaxAge)
	}
}
