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

// LocalStorage implements Storage using the local filesystem. Files are
// grouped per session, with a .meta sidecar directory for metadata.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Save stores the original bytes of a document under its session
func (s *LocalStorage) Save(_ context.Context, sessionID string, docID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	sessionDir := filepath.Join(s.basePath, sanitizeFilename(sessionID))
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	// UUID prefix keeps repeated uploads of the same name apart
	storedFilename := fmt.Sprintf("%s_%s", docID.String()[:8], sanitizeFilename(filename))
	filePath := filepath.Join(sessionDir, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          docID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		CreatedAt:   time.Now(),
	}

	if err := s.saveMetadata(sessionID, docID, info); err != nil {
		os.Remove(filePath)
		return nil, err
	}

	return info, nil
}

// Open retrieves a stored document by its ID
func (s *LocalStorage) Open(ctx context.Context, sessionID string, docID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.getInfo(sessionID, docID)
	if err != nil {
		return nil, nil, err
	}

	filePath := filepath.Join(s.basePath, sanitizeFilename(sessionID), info.Path)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Delete removes a stored document
func (s *LocalStorage) Delete(ctx context.Context, sessionID string, docID uuid.UUID) error {
	info, err := s.getInfo(sessionID, docID)
	if err != nil {
		return err
	}

	sessionDir := filepath.Join(s.basePath, sanitizeFilename(sessionID))
	if err := os.Remove(filepath.Join(sessionDir, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	os.Remove(filepath.Join(sessionDir, ".meta", docID.String()+".json"))
	return nil
}

// List returns all stored documents of a session
func (s *LocalStorage) List(_ context.Context, sessionID string) ([]*FileInfo, error) {
	metaDir := filepath.Join(s.basePath, sanitizeFilename(sessionID), ".meta")
	if _, err := os.Stat(metaDir); os.IsNotExist(err) {
		return []*FileInfo{}, nil
	}

	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
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

		info, err := s.getInfo(sessionID, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

func (s *LocalStorage) getInfo(sessionID string, docID uuid.UUID) (*FileInfo, error) {
	metaPath := filepath.Join(s.basePath, sanitizeFilename(sessionID), ".meta", docID.String()+".json")

	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", docID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

func (s *LocalStorage) saveMetadata(sessionID string, docID uuid.UUID, info *FileInfo) error {
	metaDir := filepath.Join(s.basePath, sanitizeFilename(sessionID), ".meta")
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	metaPath := filepath.Join(metaDir, docID.String()+".json")
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes path separators and other unsafe characters
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
