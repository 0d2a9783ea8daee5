package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the directory used by NewDiskStore when none is given.
const DefaultDir = ".cached_data"

// DiskStore persists entries as one file per key under a base directory.
//
// The directory is created on first use. Writes go through a temp file and
// rename, so a reader never observes a torn entry and concurrent writers of
// the same key resolve to the last completed write.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a disk store rooted at dir, creating the directory
// if it does not exist. An empty dir selects DefaultDir.
func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cache: resolve directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	return &DiskStore{dir: abs}, nil
}

// Dir returns the absolute base directory of the store.
func (s *DiskStore) Dir() string { return s.dir }

// Get retrieves a stored value. found is false when no entry file exists.
func (s *DiskStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: read entry: %w", err)
	}
	return data, true, nil
}

// Set persists a value under key, replacing any existing entry.
func (s *DiskStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("cache: create temp entry: %w", err)
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: persist entry: %w", err)
	}
	return nil
}

// path maps a key to its entry file. Keys are used as file names directly,
// so path separators are rejected on top of the usual key validation.
func (s *DiskStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

// Ensure DiskStore implements Store
var _ Store = (*DiskStore)(nil)
