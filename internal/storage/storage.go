// Package storage defines the interface for object storage operations.
// The backend is chosen once at startup and injected. MinioStorage works with
// any S3-compatible provider and S3Storage talks to AWS through the official
// SDK. LocalStorage and MemoryStorage cover single-node runs and tests.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
)

// Errors returned by every Storage implementation. Callers match them with errors.Is;
// implementations wrap them together with the provider's original error.
var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrTransport is returned for network and other unclassified provider failures.
	ErrTransport = errors.New("storage transport failure")
	// ErrRejected is returned when the provider refuses the request (auth, quota, permissions).
	ErrRejected = errors.New("storage provider rejected request")
)

// SizeUnknown is passed to Put when the content length is not known in advance.
const SizeUnknown int64 = -1

// ObjectInfo describes a stored object as reported by the provider.
type ObjectInfo struct {
	Key         string
	Size        int64 // SizeUnknown when the provider did not report it
	ContentType string
}

// Storage is the interface for storing and retrieving objects by key.
// Implementations must be safe for concurrent use.
type Storage interface {
	// EnsureNamespace creates the backing bucket if it does not exist yet. Idempotent.
	EnsureNamespace(ctx context.Context) error
	// Put streams content to the store under key, replacing any existing object.
	// size is the exact byte count or SizeUnknown.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	// Get returns a reader bound to the object's content. The caller must close it.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes the object at key. Deleting an absent key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// List returns a snapshot of all keys. Ordering is provider-defined and may
	// differ between calls.
	List(ctx context.Context) ([]string, error)
}

// Driver names selectable through STORAGE_DRIVER.
const (
	DriverMinio  = "minio"
	DriverS3     = "s3"
	DriverLocal  = "local"
	DriverMemory = "memory"
)

// contentTypeFor falls back to the key's extension, then to a generic binary type.
func contentTypeFor(key, contentType string) string {
	if contentType != "" {
		return contentType
	}
	if ext := filepath.Ext(key); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return "application/octet-stream"
}
