package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkap007/pdf-query-bot/extract"
	"github.com/avkap007/pdf-query-bot/loader"
)

// corruptCorpus lists documents whose bodies are not parseable PDFs.
type corruptCorpus struct {
	names []string
}

func (c corruptCorpus) List(ctx context.Context) ([]string, error) {
	return c.names, nil
}

func (c corruptCorpus) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return io.NopCloser(io.LimitReader(alwaysA{}, 64)), nil
}

type alwaysA struct{}

func (alwaysA) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

func TestRunRequiresCollaborators(t *testing.T) {
	_, err := NewIndexService().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestRunListFailure(t *testing.T) {
	svc := NewIndexService(
		IndexWithStorage(failingStorage{}),
		IndexWithLoader(loader.NewPDFLoader()),
		IndexWithVectorStore(&fakeVectorStore{}),
	)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list corpus")
}

func TestRunFailsWhenNothingIndexable(t *testing.T) {
	// Every document is unreadable, so each is skipped and the batch as a
	// whole must fail rather than write an empty index.
	store := &fakeVectorStore{}
	svc := NewIndexService(
		IndexWithStorage(corruptCorpus{names: []string{"a.pdf", "b.pdf"}}),
		IndexWithLoader(loader.NewPDFLoader()),
		IndexWithVectorStore(store),
	)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents could be indexed")
}

func TestSummarizeHeuristicWhenDisabled(t *testing.T) {
	text := "Intro.\n\nIn summary, the penalty of $300.00 stands.\n\nSigned."
	svc := NewIndexService()

	got := svc.summarize(context.Background(), "a.pdf", text)
	assert.Equal(t, extract.SummaryParagraph(text), got)
}

func TestSummarizeUsesGeneratedText(t *testing.T) {
	text := "Intro.\n\nIn summary, the penalty of $300.00 stands.\n\nSigned."
	completer := &fakeCompleter{answer: "The penalty of $300.00 was confirmed."}
	svc := NewIndexService(
		IndexWithCompleter(completer),
		IndexWithSummaries(256, 0.1),
	)

	got := svc.summarize(context.Background(), "a.pdf", text)
	assert.Equal(t, completer.answer, got)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "In summary, the penalty of $300.00 stands.")
}

func TestSummarizeFallsBackOnGenerationError(t *testing.T) {
	text := "Intro.\n\nIn summary, the penalty of $300.00 stands.\n\nSigned."
	svc := NewIndexService(
		IndexWithCompleter(&fakeCompleter{err: errors.New("model offline")}),
		IndexWithSummaries(256, 0.1),
	)

	got := svc.summarize(context.Background(), "a.pdf", text)
	assert.Equal(t, extract.SummaryParagraph(text), got)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "éé", truncateRunes("ééé", 2))
}
