package storage

import (
	"context"
	"io"
)

// FileStorage keeps uploaded import files for audit and re-processing.
type FileStorage interface {
	// Upload stores the content under path and returns the stored key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a stored file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if a file is stored under path
	Exists(ctx context.Context, path string) (bool, error)
}
