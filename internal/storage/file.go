package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore implements SnapshotStore on the local filesystem. Each namespace
// maps to a single JSON file inside the configured directory. Writes go
// through a temp file and rename, so a crash mid-write leaves the previous
// snapshot intact.
type FileStore struct {
	dir string
}

// NewFileStore creates a new instance of SnapshotStore rooted at dir,
// creating the directory if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(_ context.Context, namespace string, data []byte) error {
	path := s.path(namespace)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", namespace, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", namespace, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, namespace string) ([]byte, error) {
	data, err := os.ReadFile(s.path(namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", namespace, err)
	}
	return data, nil
}

func (s *FileStore) Delete(_ context.Context, namespace string) error {
	if err := os.Remove(s.path(namespace)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot %s: %w", namespace, err)
	}
	return nil
}

func (s *FileStore) path(namespace string) string {
	return filepath.Join(s.dir, namespace+".json")
}
