package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage is the blob store behind archived uploads.
type FileStorage interface {
	// Upload stores a file under path and returns the cleaned key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; missing files are not an error.
	Delete(ctx context.Context, path string) error

	// GetURL returns a link for path valid for at least expiry.
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	Exists(ctx context.Context, path string) (bool, error)
}
