package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/extract"
	"github.com/avkap007/pdf-query-bot/llm"
	"github.com/avkap007/pdf-query-bot/loader"
	"github.com/avkap007/pdf-query-bot/models"
	"github.com/avkap007/pdf-query-bot/repository"
	"github.com/avkap007/pdf-query-bot/storage"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

// summaryContextLimit bounds the letter text handed to the summarizer.
const summaryContextLimit = 12000

// IndexService runs the offline batch pass: every PDF in the corpus is
// loaded, extracted into a DocumentRecord, chunked, embedded and stored.
// A document that fails to load or embed is skipped and logged; the batch
// carries on. Both stores are rebuilt wholesale, there is no incremental
// update.
type IndexService struct {
	storage      storage.Storage
	loader       loader.Loader
	store        vectorstore.Store
	completer    llm.Completer
	logger       *zap.SugaredLogger
	chunkSize    int
	chunkOverlap int
	summaries    bool
	maxTokens    int
	temperature  float64
}

// IndexServiceOption is a functional option for IndexService
type IndexServiceOption func(*IndexService)

// IndexWithStorage sets the corpus source
func IndexWithStorage(s storage.Storage) IndexServiceOption {
	return func(svc *IndexService) { svc.storage = s }
}

// IndexWithLoader sets the PDF loader
func IndexWithLoader(l loader.Loader) IndexServiceOption {
	return func(svc *IndexService) { svc.loader = l }
}

// IndexWithVectorStore sets the vector index
func IndexWithVectorStore(store vectorstore.Store) IndexServiceOption {
	return func(svc *IndexService) { svc.store = store }
}

// IndexWithCompleter sets the generative client used for summaries
func IndexWithCompleter(c llm.Completer) IndexServiceOption {
	return func(svc *IndexService) { svc.completer = c }
}

// IndexWithLogger sets the logger
func IndexWithLogger(logger *zap.SugaredLogger) IndexServiceOption {
	return func(svc *IndexService) { svc.logger = logger }
}

// IndexWithChunking sets the window size and overlap
func IndexWithChunking(size, overlap int) IndexServiceOption {
	return func(svc *IndexService) {
		svc.chunkSize = size
		svc.chunkOverlap = overlap
	}
}

// IndexWithSummaries enables generative per-document summaries
func IndexWithSummaries(maxTokens int, temperature float64) IndexServiceOption {
	return func(svc *IndexService) {
		svc.summaries = true
		svc.maxTokens = maxTokens
		svc.temperature = temperature
	}
}

// NewIndexService creates a new index service
func NewIndexService(opts ...IndexServiceOption) *IndexService {
	svc := &IndexService{
		chunkSize:    500,
		chunkOverlap: 50,
		maxTokens:    256,
		temperature:  0.1,
		logger:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Run processes the whole corpus and returns the populated metadata store.
// The caller persists it. Run fails only when the corpus cannot be listed
// or nothing at all could be indexed.
func (s *IndexService) Run(ctx context.Context) (*repository.MetadataStore, error) {
	if s.storage == nil || s.loader == nil || s.store == nil {
		return nil, errors.New("storage, loader and vector store are required")
	}

	names, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus: %w", err)
	}

	var records []models.DocumentRecord
	var chunks []models.Chunk

	for _, name := range names {
		text, err := s.loadText(ctx, name)
		if err != nil {
			s.logger.Warnw("skipping document", "file", name, "error", err)
			continue
		}

		record := extract.Extract(text)
		record.Filename = name
		record.Summary = s.summarize(ctx, name, text)

		records = append(records, record)
		chunks = append(chunks, BuildChunks(record, text, s.chunkSize, s.chunkOverlap)...)

		s.logger.Infow("processed document",
			"file", name,
			"review_ref", record.ReviewRef,
			"penalty_amount", record.PenaltyAmount,
		)
	}

	if len(records) == 0 {
		return nil, errors.New("no documents could be indexed")
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	s.logger.Infow("index build complete", "documents", len(records), "chunks", len(chunks))
	return repository.NewMetadataStore(records), nil
}

// loadText opens one document and joins its pages.
func (s *IndexService) loadText(ctx context.Context, name string) (string, error) {
	body, err := s.storage.Open(ctx, name)
	if err != nil {
		return "", err
	}
	defer body.Close()

	pages, err := s.loader.LoadReader(body)
	if err != nil {
		return "", err
	}
	return loader.FullText(pages), nil
}

// summarize produces the record summary: generated when summaries are
// enabled and the model returns something, the heuristic conclusion
// paragraph otherwise. A record never carries both.
func (s *IndexService) summarize(ctx context.Context, name, text string) string {
	heuristic := extract.SummaryParagraph(text)
	if !s.summaries || s.completer == nil {
		return heuristic
	}

	prompt := fmt.Sprintf(
		"Summarize the following penalty review decision letter in two to three sentences. "+
			"State the outcome, the penalty amount if any, and the key finding.\n\nLETTER:\n%s\n\nSummary:",
		truncateRunes(text, summaryContextLimit),
	)

	generated, err := s.completer.Complete(ctx, prompt, s.maxTokens, s.temperature)
	if err != nil || generated == "" {
		s.logger.Warnw("summary generation failed, using heuristic paragraph", "file", name, "error", err)
		return heuristic
	}
	return generated
}

// truncateRunes caps text at limit runes.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return text
}
