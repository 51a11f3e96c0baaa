package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage over a local directory of PDFs.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus directory %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", basePath)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// List returns the names of all PDF files in the corpus directory.
func (s *LocalStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Open returns a reader for one PDF by filename.
func (s *LocalStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Reject path traversal; names come from user-facing identifiers.
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid document name: %s", name)
	}

	file, err := os.Open(filepath.Join(s.basePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", name)
		}
		return nil, fmt.Errorf("failed to open document %s: %w", name, err)
	}
	return file, nil
}
