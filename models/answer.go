package models

// Provenance tags where an answer came from. Deterministic metadata lookups
// always win over generative synthesis when both could apply, so callers can
// rely on the tag to tell an auditable answer from a model-generated one.
type Provenance string

const (
	ProvenanceMetadata  Provenance = "metadata"
	ProvenanceGenerated Provenance = "generated"
)

// SupportingDocument is one cited source for an answer: the full structured
// record plus the retrieved text excerpt and its similarity score.
type SupportingDocument struct {
	Record  DocumentRecord `json:"record"`
	Excerpt string         `json:"excerpt"`
	Score   float32        `json:"score,omitempty"`
}

// Answer is the result of the question-answering pipeline.
type Answer struct {
	Text       string               `json:"answer"`
	Provenance Provenance           `json:"provenance"`
	Sources    []SupportingDocument `json:"sources"`
}
