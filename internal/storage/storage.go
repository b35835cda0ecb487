// Package storage defines the blob store holding raw statement bytes.
package storage

import (
	"context"
	"fmt"
	"hash/crc32"
	"path"
	"strings"
)

// BlobStore stores uploaded statement files by key.
type BlobStore interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns domain.ErrNotFound when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
}

// ObjectKey returns the key under which a user's statement is stored.
func ObjectKey(ownerID, documentID string) string {
	return path.Join("statements", ownerID, documentID+".pdf")
}

// Checksum returns the CRC32 (IEEE) checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ParseGCSURI splits gs://bucket/object into bucket and object.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}
