package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a fully defaulted config that passes validation.
func validConfig() *Config {
	return GetDefaultConfig()
}

func TestValidate_DefaultConfigIsValid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Default config should be valid, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
}

func TestValidate_LowercaseLogLevelAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "debug"

	if err := Validate(cfg); err != nil {
		t.Fatalf("Lowercase log level should be valid, got: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"Zero", 0},
		{"Negative", -1},
		{"TooLarge", 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			if err := Validate(cfg); err == nil {
				t.Errorf("Expected validation error for port %d", tt.port)
			}
		})
	}
}

func TestValidate_UnknownMetadataType(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown metadata type")
	}
}

func TestValidate_UnknownBlobType(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Type = "gcs"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown blob type")
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Type = "badger"
	cfg.Metadata.Badger = map[string]any{"path": ""}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for badger without path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestValidate_BadgerInMemoryNeedsNoPath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Type = "badger"
	cfg.Metadata.Badger = map[string]any{"path": "", "in_memory": true}

	if err := Validate(cfg); err != nil {
		t.Fatalf("In-memory badger should not require a path, got: %v", err)
	}
}

func TestValidate_S3RequiresBucketAndRegion(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Type = "s3"
	cfg.Blob.S3 = map[string]any{"region": "us-east-1"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for S3 without bucket")
	}

	cfg.Blob.S3 = map[string]any{"bucket": "my-bucket"}
	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for S3 without region")
	}

	cfg.Blob.S3 = map[string]any{"bucket": "my-bucket", "region": "us-east-1"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected valid S3 config, got: %v", err)
	}
}

func TestValidate_ReconcileMaxAgeBelowInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Reconcile.Enabled = true
	cfg.Reconcile.Interval = time.Hour
	cfg.Reconcile.MaxAge = time.Minute

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error when max_age < interval")
	}

	// Disabled reconciler skips the rule.
	cfg.Reconcile.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Fatalf("Disabled reconciler should skip the max_age rule, got: %v", err)
	}
}
