// Package storage keeps the raw bytes of uploaded documents so they can
// be downloaded again after extraction.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for raw document retention
type Storage interface {
	// Save stores the original bytes of a document under its session
	Save(ctx context.Context, sessionID string, docID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open retrieves a stored document by its ID
	Open(ctx context.Context, sessionID string, docID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a stored document
	Delete(ctx context.Context, sessionID string, docID uuid.UUID) error

	// List returns all stored documents of a session
	List(ctx context.Context, sessionID string) ([]*FileInfo, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates a Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
