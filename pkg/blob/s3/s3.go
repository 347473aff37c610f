// Package s3 implements blob storage on Amazon S3 or S3-compatible services
// (MinIO, Localstack, Cloudflare R2).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/wantpinow/sandboxdav/pkg/blob"
)

// S3BlobStore implements blob.Store using a single S3 bucket.
//
// Object keys are used verbatim (with an optional prefix), so the bucket
// contents stay human-readable: "tenant/path/to/file.txt::v3". Range reads
// map directly onto S3 byte-range requests, so partial reads of large
// objects never download the whole body.
//
// Thread safety: the underlying S3 client is safe for concurrent use and the
// store holds no mutable state.
type S3BlobStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for the S3 blob store.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	KeyPrefix string
}

// NewS3BlobStore creates a new S3-backed blob store and verifies bucket
// access with a HeadBucket call.
func NewS3BlobStore(ctx context.Context, cfg Config) (*S3BlobStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3BlobStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3BlobStore) objectKey(key string) string {
	if s.keyPrefix != "" {
		return s.keyPrefix + key
	}
	return key
}

// Get downloads an object, optionally restricted to an inclusive byte range.
//
// The S3 GetObject operation respects context cancellation; if the context
// is cancelled mid-download the returned reader yields the error.
func (s *S3BlobStore) Get(ctx context.Context, key string, rng *blob.ByteRange) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}
	if rng != nil {
		// S3 ranges are inclusive on both ends, same as ours.
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", rng.Start, rng.End))
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, 0, fmt.Errorf("object %s: %w", key, blob.ErrObjectNotFound)
		}
		return nil, 0, fmt.Errorf("failed to get object from S3: %w", err)
	}

	var length int64
	if result.ContentLength != nil {
		length = *result.ContentLength
	}

	return result.Body, length, nil
}

// Put uploads data as a whole object, overwriting any previous content.
func (s *S3BlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object to S3: %w", err)
	}

	return nil
}

// Delete removes an object. S3 DeleteObject succeeds for absent keys, which
// matches the blob.Store contract.
func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}

	return nil
}

// Healthcheck verifies bucket access.
func (s *S3BlobStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q not accessible: %w", s.bucket, err)
	}

	return nil
}
