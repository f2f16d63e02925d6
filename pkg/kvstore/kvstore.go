package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hush-sos/sos-agent/pkg/file"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a durable byte-valued key-value store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// FileStore persists each key as a single file inside a data directory.
// Writes go through the atomic tmp+rename path of the file client, so a
// value is either fully replaced or untouched.
type FileStore struct {
	dir     string
	fileOps file.FileOperations
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, fileOps file.FileOperations) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, fileOps: fileOps}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *FileStore) Get(key string) ([]byte, error) {
	path := s.path(key)

	exists, err := s.fileOps.IsFileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	return s.fileOps.ReadFileRaw(path)
}

// Set stores value under key, replacing any previous value.
func (s *FileStore) Set(key string, value []byte) error {
	return s.fileOps.WriteFileRaw(s.path(key), value)
}

// Delete removes the value stored under key. Deleting a missing key is a no-op.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".dat")
}
