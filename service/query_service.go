package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/llm"
	"github.com/avkap007/pdf-query-bot/loader"
	"github.com/avkap007/pdf-query-bot/models"
	"github.com/avkap007/pdf-query-bot/repository"
	"github.com/avkap007/pdf-query-bot/storage"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

var (
	ErrRetrievalFailed  = errors.New("failed to retrieve supporting chunks")
	ErrGenerationFailed = errors.New("failed to generate answer")
)

// followupApology is returned when the per-document follow-up path cannot
// load or answer; that path is presentation-adjacent and tolerates soft
// failure instead of propagating the error.
const followupApology = "Sorry, I wasn't able to look into that document just now. Please try again in a moment."

// refPatterns recognize structured-lookup questions that name a review
// reference (R followed by at least seven digits). Patterns are tried in
// order; the first match wins and extraction stops.
var refPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)final\s+penalty.*?\b(R\d{7,})\b`),
	regexp.MustCompile(`(?i)\b(R\d{7,})\b.*?penalt`),
	regexp.MustCompile(`(?i)penalt\w*.*?\b(R\d{7,})\b`),
}

// QueryService answers user questions. It routes each question through the
// deterministic metadata path first and falls back to retrieval plus
// generation only when no structured short-circuit applies: auditable
// answers always win over generative ones when both exist.
type QueryService struct {
	metadata      *repository.MetadataStore
	store         vectorstore.Store
	completer     llm.Completer
	storage       storage.Storage
	loader        loader.Loader
	logger        *zap.SugaredLogger
	topK          int
	maxTokens     int
	temperature   float64
	searchTimeout time.Duration
	answerTimeout time.Duration
	followupLimit int
}

// QueryServiceOption is a functional option for QueryService
type QueryServiceOption func(*QueryService)

// QueryWithMetadataStore sets the metadata store
func QueryWithMetadataStore(store *repository.MetadataStore) QueryServiceOption {
	return func(s *QueryService) { s.metadata = store }
}

// QueryWithVectorStore sets the vector index
func QueryWithVectorStore(store vectorstore.Store) QueryServiceOption {
	return func(s *QueryService) { s.store = store }
}

// QueryWithCompleter sets the generative client
func QueryWithCompleter(c llm.Completer) QueryServiceOption {
	return func(s *QueryService) { s.completer = c }
}

// QueryWithCorpus sets the corpus source and PDF loader used by the
// per-document follow-up path
func QueryWithCorpus(st storage.Storage, l loader.Loader) QueryServiceOption {
	return func(s *QueryService) {
		s.storage = st
		s.loader = l
	}
}

// QueryWithLogger sets the logger
func QueryWithLogger(logger *zap.SugaredLogger) QueryServiceOption {
	return func(s *QueryService) { s.logger = logger }
}

// QueryWithRetrieval sets top-K and the collaborator timeouts
func QueryWithRetrieval(topK int, searchTimeout, answerTimeout time.Duration) QueryServiceOption {
	return func(s *QueryService) {
		s.topK = topK
		s.searchTimeout = searchTimeout
		s.answerTimeout = answerTimeout
	}
}

// QueryWithGeneration sets the token budget and sampling temperature
func QueryWithGeneration(maxTokens int, temperature float64) QueryServiceOption {
	return func(s *QueryService) {
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// QueryWithFollowupLimit caps the document prefix used as follow-up context
func QueryWithFollowupLimit(limit int) QueryServiceOption {
	return func(s *QueryService) { s.followupLimit = limit }
}

// NewQueryService creates a new query service
func NewQueryService(opts ...QueryServiceOption) *QueryService {
	s := &QueryService{
		topK:          5,
		maxTokens:     1024,
		temperature:   0.1,
		searchTimeout: 30 * time.Second,
		answerTimeout: 120 * time.Second,
		followupLimit: 12000,
		logger:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer routes a question. Steps, strictly ordered: extract a review
// reference from the question; if one is found and the metadata store has a
// matching record with a non-empty penalty amount, answer from the stored
// fields with no generative call; otherwise delegate to retrieval plus
// generation. A lookup miss is silent and falls through.
func (s *QueryService) Answer(ctx context.Context, question string) (*models.Answer, error) {
	if token := extractRefToken(question); token != "" {
		if record, ok := s.metadata.FindByToken(token); ok && record.PenaltyAmount != "" {
			s.logger.Infow("answered from metadata", "token", token, "file", record.Filename)
			return metadataAnswer(record), nil
		}
	}
	return s.answerGenerated(ctx, question)
}

// extractRefToken returns the review reference named by the question, or ""
// when no question-shape pattern matches.
func extractRefToken(question string) string {
	for _, re := range refPatterns {
		if m := re.FindStringSubmatch(question); m != nil {
			return m[1]
		}
	}
	return ""
}

// metadataAnswer synthesizes a deterministic answer purely from stored
// fields.
func metadataAnswer(record models.DocumentRecord) *models.Answer {
	outcome := "was not upheld on review"
	if record.PenaltyUpheld {
		outcome = "was upheld on review"
	}
	text := fmt.Sprintf("The final penalty in %s was $%s. The penalty %s.",
		record.Identifier(), record.PenaltyAmount, outcome)

	return &models.Answer{
		Text:       text,
		Provenance: models.ProvenanceMetadata,
		Sources: []models.SupportingDocument{
			{Record: record, Excerpt: record.Summary},
		},
	}
}

// answerGenerated retrieves the top-K chunks, assembles a prompt and asks
// the model. Collaborator failures on this path propagate to the caller so
// the user sees a retry prompt, never a confident empty answer.
func (s *QueryService) answerGenerated(ctx context.Context, question string) (*models.Answer, error) {
	searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()

	results, err := s.store.Search(searchCtx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	prompt := buildAnswerPrompt(question, results)

	genCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	text, err := s.completer.Complete(genCtx, prompt, s.maxTokens, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	sources := make([]models.SupportingDocument, 0, len(results))
	for _, res := range results {
		sources = append(sources, models.SupportingDocument{
			Record:  res.Chunk.Record,
			Excerpt: res.Chunk.Text,
			Score:   res.Score,
		})
	}

	return &models.Answer{
		Text:       text,
		Provenance: models.ProvenanceGenerated,
		Sources:    sources,
	}, nil
}

// AnswerAboutDocument answers a deep-dive follow-up scoped to one document
// the user already selected. The document's full text is loaded directly,
// bypassing the vector index, truncated to a bounded prefix and handed to
// the model as context. Any failure is converted to an apology string.
func (s *QueryService) AnswerAboutDocument(ctx context.Context, question, identifier string) string {
	record, ok := s.metadata.FindByToken(identifier)
	if !ok {
		// Fall back to treating the identifier as a filename.
		record, ok = s.metadata.Get(identifier)
		if !ok {
			return followupApology
		}
	}

	text, err := s.loadDocumentText(ctx, record.Filename)
	if err != nil {
		s.logger.Warnw("follow-up document load failed", "file", record.Filename, "error", err)
		return followupApology
	}

	prompt := fmt.Sprintf(
		"Answer the question using only the decision letter below. "+
			"If the letter does not contain the answer, say so.\n\nLETTER:\n%s\n\nQUESTION: %s\n\nAnswer:",
		truncateRunes(text, s.followupLimit), question,
	)

	genCtx, cancel := context.WithTimeout(ctx, s.answerTimeout)
	defer cancel()

	answer, err := s.completer.Complete(genCtx, prompt, s.maxTokens, s.temperature)
	if err != nil {
		s.logger.Warnw("follow-up generation failed", "file", record.Filename, "error", err)
		return followupApology
	}
	return answer
}

// loadDocumentText reads one document from the corpus and joins its pages.
func (s *QueryService) loadDocumentText(ctx context.Context, filename string) (string, error) {
	if s.storage == nil || s.loader == nil {
		return "", errors.New("corpus source not configured")
	}

	body, err := s.storage.Open(ctx, filename)
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

// buildAnswerPrompt assembles the retrieved excerpts and the question into
// a grounded generation prompt.
func buildAnswerPrompt(question string, results []vectorstore.SearchResult) string {
	var excerpts strings.Builder
	for i, res := range results {
		fmt.Fprintf(&excerpts, "[%d] %s (review ref: %s)\n%s\n\n",
			i+1, res.Chunk.Source, res.Chunk.Record.ReviewRef, res.Chunk.Text)
	}

	return fmt.Sprintf(
		"You are assisting regulatory compliance staff with questions about penalty "+
			"review decision letters. Answer the question using only the numbered "+
			"excerpts below and cite the excerpt numbers you relied on. If the "+
			"excerpts do not contain the answer, say you do not know.\n\n"+
			"EXCERPTS:\n%sQUESTION: %s\n\nAnswer:",
		excerpts.String(), question,
	)
}
