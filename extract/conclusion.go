package extract

import "strings"

// conclusionMarkers are tried in this order; the first marker present
// anywhere in the text wins, so marker-list order takes precedence over
// document position.
var conclusionMarkers = []string{"in summary", "final conclusion", "decision"}

// summaryLimit caps the heuristic summary paragraph.
const summaryLimit = 500

// IsolateConclusion returns the text following the first recognized
// conclusion marker, up to the next paragraph break. Conclusion sections,
// not introductions, state the final determination; extracting there first
// avoids matching the original penalty described in background narrative.
// If no marker is found the full text is returned unchanged, so downstream
// extraction degrades to whole-document scanning.
//
// The markers are ASCII, so case folding only touches 'A'-'Z'. Full Unicode
// lowering can change byte lengths (U+0130 lowers to two runes' worth of
// bytes), which would desync the marker offset from the original text.
func IsolateConclusion(text string) string {
	lower := strings.Map(asciiLower, text)
	for _, marker := range conclusionMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(marker):]
		if end := strings.Index(rest, "\n\n"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return text
}

// asciiLower folds 'A'-'Z' only, preserving every byte offset.
func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// SummaryParagraph returns a heuristic free-text summary: the first
// paragraph of the isolated conclusion, capped at summaryLimit runes. Used
// when no generated summary is available.
func SummaryParagraph(text string) string {
	conclusion := IsolateConclusion(text)
	if para, _, found := strings.Cut(conclusion, "\n\n"); found {
		conclusion = para
	}
	conclusion = strings.TrimSpace(conclusion)
	runes := []rune(conclusion)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit])
	}
	return conclusion
}
