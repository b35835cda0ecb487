// Package gcs stores statement files in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/joshua-paul-1/fintrackr/internal/domain"
	blob "github.com/joshua-paul-1/fintrackr/internal/storage"
)

const uploadTimeout = 2 * time.Minute

// Store is a BlobStore backed by one GCS bucket.
// It assumes Application Default Credentials unless a credentials file is given.
type Store struct {
	client *storage.Client
	bucket string
}

// New creates a GCS client for bucket.
func New(ctx context.Context, bucket, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Store{client: client, bucket: bucket}, nil
}

// Put uploads data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}

	return nil
}

// Get downloads the object under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, domain.NotFound("Document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s: %w", s.URI(key), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}

	return data, nil
}

// Delete removes the object under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete GCS object %s: %w", s.URI(key), err)
	}
	return nil
}

// URI returns the gs:// URI of key.
func (s *Store) URI(key string) string {
	return "gs://" + s.bucket + "/" + key
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ blob.BlobStore = (*Store)(nil)
