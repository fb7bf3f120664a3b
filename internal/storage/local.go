package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files
type Storage interface {
	Save(dir, filename string, r io.Reader) (string, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
	FullPath(path string) string
}

// LocalStorage stores files under a base directory on disk
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a local storage rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes the reader's contents under dir with a unique name derived
// from filename, returning the storage-relative path.
func (s *LocalStorage) Save(dir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	rel := filepath.Join(dir, name)

	full := filepath.Join(s.basePath, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", err
	}
	return rel, nil
}

// Open returns a reader for a stored file
func (s *LocalStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(s.FullPath(path))
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(path string) error {
	err := os.Remove(s.FullPath(path))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FullPath resolves a storage-relative path to an absolute one, refusing
// to escape the base directory.
func (s *LocalStorage) FullPath(path string) string {
	clean := filepath.Clean("/" + path)
	return filepath.Join(s.basePath, clean)
}
