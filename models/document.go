package models

// DocumentRecord holds the structured fields extracted from one decision
// letter. Fields that the extractor could not find are left at their zero
// value; extraction misses are not errors.
//
// The JSON tags match the on-disk metadata.json schema, one object per
// source file, keyed by filename.
type DocumentRecord struct {
	Filename          string   `json:"filename"`
	ReviewRef         string   `json:"review_ref"`
	ReviewDate        string   `json:"review_date"`
	BoardDecisionDate string   `json:"board_decision_date"`
	ReviewOfficer     string   `json:"review_officer"`
	PenaltyAmount     string   `json:"penalty_amount"`
	PenaltyUpheld     bool     `json:"was_penalty_upheld"`
	DueDiligenceFound bool     `json:"due_diligence_found"`
	RepeatOffense     bool     `json:"repeat_offense"`
	SectionsViolated  []string `json:"sections_violated"`
	Summary           string   `json:"summary,omitempty"`
}

// Identifier returns the stable key for this record: the parsed review
// reference when one was found, the source filename otherwise.
func (r DocumentRecord) Identifier() string {
	if r.ReviewRef != "" {
		return r.ReviewRef
	}
	return r.Filename
}
