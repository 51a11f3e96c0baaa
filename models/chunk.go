package models

import (
	"github.com/google/uuid"
)

// Chunk is the retrieval unit: a bounded window of a document's text,
// overlapping its neighbours by a fixed margin. Each chunk carries a
// denormalized copy of its owning document's structured fields so results
// can be filtered and displayed without a second lookup. The back-reference
// to the owner is the Source filename, never a live object.
type Chunk struct {
	ID        uuid.UUID      `json:"id"`
	Source    string         `json:"source"` // owning document's filename
	Position  int            `json:"position"`
	Text      string         `json:"text"`
	Record    DocumentRecord `json:"record"`
	Embedding []float32      `json:"embedding,omitempty"`
}
