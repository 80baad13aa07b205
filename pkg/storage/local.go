package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Local stores report files under basePath/<user>/, with metadata sidecars
// in a .meta subdirectory.
type Local struct {
	basePath string
}

// NewLocal creates a local storage rooted at basePath.
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

// Save writes one report file and its metadata.
func (s *Local) Save(ctx context.Context, userID uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	userDir := filepath.Join(s.basePath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return nil, fmt.Errorf("create user directory: %w", err)
	}

	storedName := fileID.String()[:8] + "_" + sanitizeFilename(filename)
	filePath := filepath.Join(userDir, storedName)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("write report file: %w", err)
	}

	info := &FileInfo{
		ID:          fileID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedName,
		CreatedAt:   time.Now(),
	}
	if err := s.writeMeta(userID, info); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return info, nil
}

// Open returns a reader for a stored file along with its metadata.
func (s *Local) Open(ctx context.Context, userID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.readMeta(userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.basePath, userID.String(), info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("open report file: %w", err)
	}
	return f, info, nil
}

// List returns all stored files for a user, unordered.
func (s *Local) List(ctx context.Context, userID uuid.UUID) ([]*FileInfo, error) {
	metaDir := filepath.Join(s.basePath, userID.String(), ".meta")
	entries, err := os.ReadDir(metaDir)
	if os.IsNotExist(err) {
		return []*FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list report metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := s.readMeta(userID, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	return files, nil
}

// Delete removes a file and its metadata.
func (s *Local) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	info, err := s.readMeta(userID, fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.basePath, userID.String(), info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report file: %w", err)
	}
	_ = os.Remove(s.metaPath(userID, fileID))
	return nil
}

func (s *Local) metaPath(userID, fileID uuid.UUID) string {
	return filepath.Join(s.basePath, userID.String(), ".meta", fileID.String()+".json")
}

func (s *Local) writeMeta(userID uuid.UUID, info *FileInfo) error {
	metaDir := filepath.Join(s.basePath, userID.String(), ".meta")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(userID, info.ID), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Local) readMeta(userID, fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(userID, fileID))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("report %s not found", fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &info, nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(name)
}
