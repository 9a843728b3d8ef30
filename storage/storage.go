// Package storage wraps the single object-storage bucket that holds uploaded blobs.
package storage

import (
	"context"
	"io"
	"path"
)

// Storage is the narrow surface the handlers need from object storage.
type Storage interface {
	// Upload streams reader to the bucket under key. size is -1 when unknown.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the deterministic URL of key.
	PublicURL(key string) string
}

// ObjectKey namespaces a blob under the bucket name and a user segment, then the record id,
// so two uploads of the same filename never collide.
func ObjectKey(bucket, userSegment, id, filename string) string {
	return path.Join(bucket, userSegment, id, filename)
}
