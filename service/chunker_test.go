package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avkap007/pdf-query-bot/models"
)

func TestBuildChunksShortTextSingleChunk(t *testing.T) {
	rec := models.DocumentRecord{Filename: "short.pdf"}
	chunks := BuildChunks(rec, "tiny", 500, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny", chunks[0].Text)
	assert.Equal(t, "short.pdf", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].Position)
}

func TestBuildChunksEmptyTextSingleChunk(t *testing.T) {
	chunks := BuildChunks(models.DocumentRecord{Filename: "empty.pdf"}, "", 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text)
}

func TestBuildChunksCountFormula(t *testing.T) {
	// ceil((L-O)/(W-O)) windows for L runes, window W, overlap O.
	cases := []struct {
		length, size, overlap, want int
	}{
		{10, 4, 1, 3},
		{5, 4, 1, 2},
		{4, 4, 1, 1},
		{1000, 500, 50, 3},
		{500, 500, 50, 1},
		{501, 500, 50, 2},
	}
	for _, tc := range cases {
		text := strings.Repeat("a", tc.length)
		chunks := BuildChunks(models.DocumentRecord{Filename: "doc.pdf"}, text, tc.size, tc.overlap)
		assert.Len(t, chunks, tc.want, "length=%d size=%d overlap=%d", tc.length, tc.size, tc.overlap)
	}
}

func TestBuildChunksOverlapAndPositions(t *testing.T) {
	text := "abcdefghij"
	chunks := BuildChunks(models.DocumentRecord{Filename: "doc.pdf"}, text, 4, 1)

	require.Len(t, chunks, 3)
	assert.Equal(t, "abcd", chunks[0].Text)
	assert.Equal(t, "defg", chunks[1].Text)
	assert.Equal(t, "ghij", chunks[2].Text)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
}

func TestBuildChunksRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 6)
	chunks := BuildChunks(models.DocumentRecord{Filename: "doc.pdf"}, text, 4, 1)

	require.Len(t, chunks, 2)
	assert.Equal(t, "éééé", chunks[0].Text)
	assert.Equal(t, "ééé", chunks[1].Text)
}

func TestBuildChunksCarriesRecord(t *testing.T) {
	rec := models.DocumentRecord{Filename: "doc.pdf", ReviewRef: "R0311111", PenaltyAmount: "750.00"}
	chunks := BuildChunks(rec, strings.Repeat("a", 20), 8, 2)
	for _, c := range chunks {
		assert.Equal(t, rec, c.Record)
		assert.NotEqual(t, "", c.ID.String())
	}
}
