// Package config loads, defaults, and validates server configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SANDBOXDAV_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete server configuration.
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration shape. The
// Metadata and Blob sections carry a Type selector plus one map per
// supported implementation; only the map matching the selected type is
// decoded and used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the HTTP listener settings
	Server ServerConfig `mapstructure:"server"`

	// Metadata specifies the metadata store type and type-specific configuration
	Metadata MetadataConfig `mapstructure:"metadata"`

	// Blob specifies the blob store type and type-specific configuration
	Blob BlobConfig `mapstructure:"blob"`

	// Reconcile controls the stranded-write reconciler
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	// Host is the address to bind to; empty binds all interfaces
	Host string `mapstructure:"host"`

	// Port is the TCP port to listen on
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// ReadTimeout bounds reading the full request, including the body
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"required,gt=0"`

	// WriteTimeout bounds writing the response
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required,gt=0"`

	// IdleTimeout bounds keep-alive connections between requests
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"required,gt=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// MaxUploadBytes caps the accepted PUT body size
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// MetadataConfig specifies metadata store configuration.
type MetadataConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// BlobConfig specifies blob store configuration.
type BlobConfig struct {
	// Type specifies which blob store implementation to use
	// Valid values: memory, s3
	Type string `mapstructure:"type" validate:"required,oneof=memory s3"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// ReconcileConfig controls the background reconciler that cleans up
// reservations whose upload or commit never completed.
type ReconcileConfig struct {
	// Enabled turns the reconciler on
	Enabled bool `mapstructure:"enabled"`

	// Interval is the time between reconciliation sweeps
	Interval time.Duration `mapstructure:"interval" validate:"required,gt=0"`

	// MaxAge is how long a pending reservation may exist before it is
	// considered stranded
	MaxAge time.Duration `mapstructure:"max_age" validate:"required,gt=0"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the SANDBOXDAV_ prefix and underscores.
	// Example: SANDBOXDAV_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("SANDBOXDAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is acceptable; the defaults cover everything.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sandboxdav")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "sandboxdav")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
