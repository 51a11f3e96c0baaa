package vectorstore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/embedding"
	"github.com/avkap007/pdf-query-bot/models"
)

// ChromemStore implements Store on chromem-go, an embeddable pure-Go vector
// database that persists to a directory of gob files. Reopening the same
// directory reloads every stored vector, so the index survives restarts
// without re-embedding. Collections are safe for concurrent reads.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
	logger     *zap.SugaredLogger
}

// NewChromemStore opens (or creates) the persistent database at path.
func NewChromemStore(path, collectionName string, embedder embedding.Embedder, logger *zap.SugaredLogger) (*ChromemStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if collectionName == "" {
		collectionName = "decision_letters"
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem DB: %w", err)
	}

	// Queries go through EmbedQuery; document vectors are precomputed in
	// Upsert with EmbedDocument, so this func never runs at add time.
	queryFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, queryFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collectionName, err)
	}

	logger.Infow("vector index opened",
		"backend", "chromem",
		"path", path,
		"collection", collectionName,
		"stored_chunks", collection.Count(),
	)

	return &ChromemStore{db: db, collection: collection, embedder: embedder, logger: logger}, nil
}

// Upsert embeds and stores the chunks. Each chunk's structured metadata is
// flattened onto the stored document so search results can rebuild the full
// record without a metadata-store lookup.
func (s *ChromemStore) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyChunks
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vector := chunk.Embedding
		if vector == nil {
			var err error
			vector, err = s.embedder.EmbedDocument(ctx, chunk.Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
			}
		}
		docs = append(docs, chromem.Document{
			ID:        chunk.ID.String(),
			Content:   chunk.Text,
			Metadata:  recordToMetadata(chunk),
			Embedding: vector,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	s.logger.Infow("chunks stored", "count", len(docs))
	return nil
}

// Search returns the k nearest chunks to the query text.
func (s *ChromemStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, ErrIndexEmpty
	}
	if k > count {
		k = count
	}

	results, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, res := range results {
		chunk := metadataToChunk(res.Metadata)
		chunk.Text = res.Content
		if id, err := uuid.Parse(res.ID); err == nil {
			chunk.ID = id
		}
		out = append(out, SearchResult{Chunk: chunk, Score: res.Similarity})
	}
	return out, nil
}

// recordToMetadata flattens a chunk's denormalized record into the
// string-valued metadata chromem stores per document.
func recordToMetadata(chunk models.Chunk) map[string]string {
	rec := chunk.Record
	return map[string]string{
		"source":              chunk.Source,
		"position":            strconv.Itoa(chunk.Position),
		"review_ref":          rec.ReviewRef,
		"review_date":         rec.ReviewDate,
		"board_decision_date": rec.BoardDecisionDate,
		"review_officer":      rec.ReviewOfficer,
		"penalty_amount":      rec.PenaltyAmount,
		"was_penalty_upheld":  strconv.FormatBool(rec.PenaltyUpheld),
		"due_diligence_found": strconv.FormatBool(rec.DueDiligenceFound),
		"repeat_offense":      strconv.FormatBool(rec.RepeatOffense),
		"sections_violated":   strings.Join(rec.SectionsViolated, ","),
	}
}

// metadataToChunk rebuilds the chunk fields from stored metadata.
func metadataToChunk(meta map[string]string) models.Chunk {
	position, _ := strconv.Atoi(meta["position"])
	var sections []string
	if meta["sections_violated"] != "" {
		sections = strings.Split(meta["sections_violated"], ",")
	}
	return models.Chunk{
		Source:   meta["source"],
		Position: position,
		Record: models.DocumentRecord{
			Filename:          meta["source"],
			ReviewRef:         meta["review_ref"],
			ReviewDate:        meta["review_date"],
			BoardDecisionDate: meta["board_decision_date"],
			ReviewOfficer:     meta["review_officer"],
			PenaltyAmount:     meta["penalty_amount"],
			PenaltyUpheld:     meta["was_penalty_upheld"] == "true",
			DueDiligenceFound: meta["due_diligence_found"] == "true",
			RepeatOffense:     meta["repeat_offense"] == "true",
			SectionsViolated:  sections,
		},
	}
}
