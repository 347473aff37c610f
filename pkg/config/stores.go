package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/pkg/blob"
	blobmemory "github.com/wantpinow/sandboxdav/pkg/blob/memory"
	blobs3 "github.com/wantpinow/sandboxdav/pkg/blob/s3"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
	"github.com/wantpinow/sandboxdav/pkg/metadata/badger"
	metadatamemory "github.com/wantpinow/sandboxdav/pkg/metadata/memory"
)

// s3YAMLConfig represents S3 configuration loaded from YAML files.
type s3YAMLConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	MaxRetries      int    `mapstructure:"max_retries"`
}

// CreateMetadataStore creates a metadata store instance from configuration.
//
// The factory uses the Type field to select the implementation, then
// decodes the matching type-specific map and passes it to the store's
// constructor.
func CreateMetadataStore(ctx context.Context, cfg *MetadataConfig) (metadata.Store, error) {
	switch cfg.Type {
	case "memory":
		return metadatamemory.NewMemoryStore(), nil
	case "badger":
		return createBadgerMetadataStore(cfg)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q", cfg.Type)
	}
}

// createBadgerMetadataStore creates a BadgerDB metadata store.
func createBadgerMetadataStore(cfg *MetadataConfig) (metadata.Store, error) {
	var badgerCfg badger.Config
	if err := mapstructure.Decode(cfg.Badger, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	store, err := badger.NewBadgerStore(badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Info("Badger metadata store initialized: path=%s, in_memory=%t",
		badgerCfg.Path, badgerCfg.InMemory)

	return store, nil
}

// CreateBlobStore creates a blob store instance from configuration.
func CreateBlobStore(ctx context.Context, cfg *BlobConfig) (blob.Store, error) {
	switch cfg.Type {
	case "memory":
		return blobmemory.NewMemoryBlobStore(), nil
	case "s3":
		return createS3BlobStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown blob store type: %q", cfg.Type)
	}
}

// createS3BlobStore creates an S3-backed blob store.
func createS3BlobStore(ctx context.Context, cfg *BlobConfig) (blob.Store, error) {
	var yamlCfg s3YAMLConfig
	if err := mapstructure.Decode(cfg.S3, &yamlCfg); err != nil {
		return nil, fmt.Errorf("invalid S3 config: %w", err)
	}

	if yamlCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 blob store: bucket is required")
	}
	if yamlCfg.Region == "" {
		return nil, fmt.Errorf("S3 blob store: region is required")
	}

	client, err := blobs3.NewS3Client(ctx, blobs3.ClientConfig{
		Region:          yamlCfg.Region,
		Endpoint:        yamlCfg.Endpoint,
		AccessKeyID:     yamlCfg.AccessKeyID,
		SecretAccessKey: yamlCfg.SecretAccessKey,
		ForcePathStyle:  yamlCfg.ForcePathStyle,
		MaxRetries:      yamlCfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	store, err := blobs3.NewS3BlobStore(ctx, blobs3.Config{
		Client:    client,
		Bucket:    yamlCfg.Bucket,
		KeyPrefix: yamlCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 store: %w", err)
	}

	logger.Info("S3 blob store initialized: bucket=%s, region=%s, prefix=%s",
		yamlCfg.Bucket, yamlCfg.Region, yamlCfg.KeyPrefix)

	return store, nil
}
