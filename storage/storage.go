// Package storage abstracts where the decision-letter corpus lives. The
// offline indexer lists and reads every PDF through it; the follow-up
// answer path re-reads single documents. The corpus is read-only from this
// side; documents are dropped into the directory or bucket out of band.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Storage is the corpus-source interface.
type Storage interface {
	// List returns the names of all PDF documents in the corpus.
	List(ctx context.Context) ([]string, error)

	// Open returns a reader for one document by name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	S3Prefix     string // Key prefix within the bucket
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New("local storage path is required")
		}
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for s3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
