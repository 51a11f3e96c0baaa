package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/embedding"
	"github.com/avkap007/pdf-query-bot/models"
)

// PostgresStore implements Store on Postgres with the pgvector extension.
// The structured record rides along as jsonb so a search result carries the
// same denormalized fields as the chromem backend.
type PostgresStore struct {
	pool       *pgxpool.Pool
	embedder   embedding.Embedder
	dimensions int
	logger     *zap.SugaredLogger
}

// NewPostgresStore connects, enables pgvector and ensures the chunk table.
func NewPostgresStore(ctx context.Context, connString string, embedder embedding.Embedder, dimensions int, logger *zap.SugaredLogger) (*PostgresStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if dimensions == 0 {
		dimensions = 768
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warnf("failed to create pgvector extension (may already exist): %v", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS letter_chunks (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			position INT NOT NULL,
			chunk_text TEXT NOT NULL,
			record JSONB NOT NULL,
			embedding vector(%d) NOT NULL
		)`, dimensions)
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create letter_chunks table: %w", err)
	}

	logger.Infow("vector index opened", "backend", "postgres", "dimensions", dimensions)

	return &PostgresStore{pool: pool, embedder: embedder, dimensions: dimensions, logger: logger}, nil
}

// Upsert replaces the stored corpus with the given chunks. The index is
// rebuilt wholesale on any corpus change; there is no incremental path.
// Embedding happens before the rebuild and the truncate-plus-insert runs in
// one transaction, so a failure anywhere leaves the previous index intact.
func (s *PostgresStore) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyChunks
	}

	vectors := make([]string, len(chunks))
	for i, chunk := range chunks {
		vector := chunk.Embedding
		if vector == nil {
			var err error
			vector, err = s.embedder.EmbedDocument(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
			}
		}
		vectors[i] = formatVector(vector)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin index rebuild: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE letter_chunks"); err != nil {
		return fmt.Errorf("failed to clear letter_chunks: %w", err)
	}

	for i, chunk := range chunks {
		recordJSON, err := json.Marshal(chunk.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal record for chunk %s: %w", chunk.ID, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO letter_chunks (id, source, position, chunk_text, record, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6::vector)`,
			chunk.ID, chunk.Source, chunk.Position, chunk.Text, recordJSON, vectors[i],
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit index rebuild: %w", err)
	}

	s.logger.Infow("chunks stored", "count", len(chunks))
	return nil
}

// Search embeds the query and returns the k nearest chunks by cosine
// distance.
func (s *PostgresStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source, position, chunk_text, record,
		        1 - (embedding <=> $1::vector) AS score
		 FROM letter_chunks
		 ORDER BY embedding <=> $1::vector
		 LIMIT $2`,
		formatVector(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query letter_chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			chunk      models.Chunk
			id         uuid.UUID
			recordJSON []byte
			score      float64
		)
		if err := rows.Scan(&id, &chunk.Source, &chunk.Position, &chunk.Text, &recordJSON, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunk.ID = id
		if err := json.Unmarshal(recordJSON, &chunk.Record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record for chunk %s: %w", id, err)
		}
		results = append(results, SearchResult{Chunk: chunk, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrIndexEmpty
	}
	return results, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// formatVector formats an embedding vector as a pgvector literal.
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
