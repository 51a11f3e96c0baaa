// Package embedding provides the text-embedding collaborator boundary.
package embedding

import "context"

// Embedder turns text into a fixed-length vector. Document and query
// embeddings are separate operations because the backing model may use
// different task types for each side of the retrieval.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
