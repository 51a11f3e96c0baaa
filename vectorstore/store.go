// Package vectorstore provides the vector-index collaborator: chunk storage
// with nearest-neighbour search. Two backends exist: an embedded chromem-go
// database persisted to a directory (the default; reloads without
// re-embedding) and Postgres with pgvector for deployments that already run
// the database. Both are write-once at index-build time and read-only at
// serve time.
package vectorstore

import (
	"context"
	"errors"

	"github.com/avkap007/pdf-query-bot/models"
)

var (
	// ErrEmptyChunks is returned when Upsert is called with nothing to store.
	ErrEmptyChunks = errors.New("no chunks to upsert")
	// ErrIndexEmpty is returned when Search runs against an index with no
	// stored chunks.
	ErrIndexEmpty = errors.New("vector index is empty")
)

// SearchResult pairs a retrieved chunk with its similarity score (higher is
// closer).
type SearchResult struct {
	Chunk models.Chunk
	Score float32
}

// Store is the vector-index interface. Search embeds the query text itself
// so callers never handle raw vectors.
type Store interface {
	Upsert(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)
}
