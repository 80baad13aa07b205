// Package storage persists generated report files on the local filesystem,
// one directory per user with JSON sidecar metadata.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo describes one stored report file.
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage stores and serves report files.
type Storage interface {
	Save(ctx context.Context, userID uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error)
	Open(ctx context.Context, userID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)
	List(ctx context.Context, userID uuid.UUID) ([]*FileInfo, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

// Config holds storage configuration.
type Config struct {
	BasePath string
}

// New creates the storage backend.
func New(cfg Config) (Storage, error) {
	return NewLocal(cfg.BasePath)
}
