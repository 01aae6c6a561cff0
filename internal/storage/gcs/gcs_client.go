package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"coverline/internal/config"
	"coverline/internal/domain"
	"coverline/internal/port"
)

type gcsClient struct {
	bucket *storage.BucketHandle
}

// NewGCSClient creates a Google Cloud Storage-backed ObjectStorage. Without a
// credentials file, application default credentials are used.
func NewGCSClient(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &gcsClient{bucket: client.Bucket(cfg.Bucket)}, nil
}

func (c *gcsClient) Download(ctx context.Context, key string) ([]byte, error) {
	reader, err := c.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs download %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("gcs download: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gcs download read: %w", err)
	}
	return data, nil
}

// Delete removes the object. A missing object counts as deleted.
func (c *gcsClient) Delete(ctx context.Context, key string) error {
	err := c.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete: %w", err)
	}
	return nil
}
