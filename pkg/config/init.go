package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the annotated sample configuration written by
// InitConfig. It mirrors GetDefaultConfig so a freshly generated file loads
// to the same values as no file at all.
const defaultConfigTemplate = `# sandboxdav Configuration File
#
# Every value can also be set through the environment with the SANDBOXDAV_
# prefix, e.g. SANDBOXDAV_LOGGING_LEVEL=DEBUG overrides logging.level.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR
  level: "INFO"
  # Log destination: stdout, stderr, or a file path
  output: "stdout"

server:
  # Listen address; empty host binds all interfaces
  host: ""
  port: 8080
  read_timeout: 5m
  write_timeout: 5m
  idle_timeout: 2m
  shutdown_timeout: 30s
  # Maximum accepted PUT body size in bytes
  max_upload_bytes: 268435456

metadata:
  # Metadata store: memory or badger
  type: "memory"
  badger:
    path: "/var/lib/sandboxdav/metadata"
    # in_memory: true keeps badger state off disk (testing only)

blob:
  # Blob store: memory or s3
  type: "memory"
  s3:
    # region: "us-east-1"
    # bucket: "sandboxdav-blobs"
    # endpoint: ""           # set for MinIO / Localstack / R2
    # access_key_id: ""      # empty uses the AWS credential chain
    # secret_access_key: ""
    # key_prefix: ""
    # force_path_style: false

reconcile:
  # Tombstone reservations whose upload never completed and delete their
  # uploaded blobs, if any.
  enabled: false
  interval: 10m
  max_age: 1h
`

// InitConfig writes a sample configuration file to the default location.
//
// Returns the path of the written file. Refuses to overwrite an existing
// file unless force is true.
func InitConfig(force bool) (string, error) {
	configDir := getConfigDir()
	configPath := filepath.Join(configDir, "config.yaml")

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// InitConfigAt writes the sample configuration to an explicit path,
// creating parent directories as needed.
func InitConfigAt(path string, force bool) (string, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
