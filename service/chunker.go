package service

import (
	"github.com/google/uuid"

	"github.com/avkap007/pdf-query-bot/models"
)

// BuildChunks splits a document's full text into fixed-size overlapping
// windows and stamps every window with the owning document's structured
// record. Windows are measured in runes so multi-byte text never splits
// mid-character. For text of length L with window size W and overlap O the
// chunk count is ceil((L-O)/(W-O)); text shorter than one window yields
// exactly one chunk.
func BuildChunks(record models.DocumentRecord, text string, chunkSize, overlap int) []models.Chunk {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	step := chunkSize - overlap

	var chunks []models.Chunk
	for start := 0; start == 0 || start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			ID:       uuid.New(),
			Source:   record.Filename,
			Position: len(chunks),
			Text:     string(runes[start:end]),
			Record:   record,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
