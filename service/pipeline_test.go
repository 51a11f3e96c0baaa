package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkap007/pdf-query-bot/models"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

const craneLetter = `Review Reference Number: R0311111
Review Decision Date: 2025-01-10
Review Officer: M. Okafor

The employer operated a tower crane without a certified operator on site.

In summary, the crane violation warrants the penalty as imposed.
I confirm the penalty. The final penalty is $2,000.00.

Signed`

const scaffoldLetter = `Review Reference Number: R0322222
Review Decision Date: 2025-02-18
Review Officer: M. Okafor

The scaffold on the third lift had no guardrails installed.

In summary, I rescind the penalty in full.

Signed`

// textCorpus serves plain-text letters as if they were stored PDFs; the
// paired textLoader passes the bytes through untouched.
type textCorpus struct {
	docs  map[string]string
	order []string
}

func (c textCorpus) List(ctx context.Context) ([]string, error) {
	return c.order, nil
}

func (c textCorpus) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	text, ok := c.docs[name]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", name)
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

type textLoader struct{}

func (textLoader) LoadReader(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return []string{string(data)}, nil
}

// topicEmbedder maps texts onto fixed unit vectors by keyword so ranking is
// deterministic without a live embedding backend.
type topicEmbedder struct{}

func (topicEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "crane"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "scaffold"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (e topicEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e topicEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func TestIndexAndQueryPipeline(t *testing.T) {
	ctx := context.Background()

	corpus := textCorpus{
		docs: map[string]string{
			"r0311111_decision.pdf": craneLetter,
			"r0322222_decision.pdf": scaffoldLetter,
		},
		order: []string{"r0311111_decision.pdf", "r0322222_decision.pdf"},
	}

	store, err := vectorstore.NewChromemStore(t.TempDir(), "pipeline_letters", topicEmbedder{}, nil)
	require.NoError(t, err)

	indexer := NewIndexService(
		IndexWithStorage(corpus),
		IndexWithLoader(textLoader{}),
		IndexWithVectorStore(store),
	)

	metadata, err := indexer.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, metadata.Len())

	crane, ok := metadata.Get("r0311111_decision.pdf")
	require.True(t, ok)
	assert.Equal(t, "R0311111", crane.ReviewRef)
	assert.Equal(t, "2,000.00", crane.PenaltyAmount)
	assert.True(t, crane.PenaltyUpheld)

	scaffold, ok := metadata.Get("r0322222_decision.pdf")
	require.True(t, ok)
	assert.Equal(t, "R0322222", scaffold.ReviewRef)
	assert.False(t, scaffold.PenaltyUpheld)

	completer := &fakeCompleter{answer: "The crane violation warrants the penalty as imposed [1]."}
	querySvc := NewQueryService(
		QueryWithMetadataStore(metadata),
		QueryWithVectorStore(store),
		QueryWithCompleter(completer),
	)

	// A semantic question whose answer appears verbatim in one letter's
	// conclusion must rank that letter first.
	answer, err := querySvc.Answer(ctx, "Which decision involved a crane?")
	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceGenerated, answer.Provenance)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "r0311111_decision.pdf", answer.Sources[0].Record.Filename)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "the crane violation warrants the penalty")

	// A structured question about the same corpus short-circuits to the
	// extracted metadata without another model call.
	answer, err = querySvc.Answer(ctx, "What was the final penalty in R0311111?")
	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceMetadata, answer.Provenance)
	assert.Contains(t, answer.Text, "2,000.00")
	assert.Len(t, completer.prompts, 1)
}
