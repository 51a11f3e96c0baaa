// Package extract turns raw decision-letter text into structured metadata
// using case-insensitive pattern matching against the fixed letter template.
// It is a best-effort extractor, not a parser: a pattern that finds nothing
// yields an empty or default field, never an error, and extracting the same
// text twice yields identical results.
package extract

import (
	"regexp"
	"strings"

	"github.com/avkap007/pdf-query-bot/models"
)

var (
	reviewRefPattern     = regexp.MustCompile(`(?i)Review Reference Number[:\s]+([A-Z0-9\-]+)`)
	reviewDatePattern    = regexp.MustCompile(`(?i)Review Decision Date[:\s]+([\d\-]+)`)
	boardDatePattern     = regexp.MustCompile(`(?i)Board Decision.*Date[:\s]+([\d\-]+)`)
	reviewOfficerPattern = regexp.MustCompile(`(?i)Review Officer[:\s]+([A-Za-z ,.\-]+)`)
	dueDiligencePattern  = regexp.MustCompile(`(?i)(found|determined).*due diligence.*(exercised|shown)`)
	repeatOffensePattern = regexp.MustCompile(`(?i)\brepeat (offense|violation)\b`)
	sectionsPattern      = regexp.MustCompile(`(?i)section[s]?\s+([0-9]+\(?[0-9a-zA-Z\/]*\)?)`)
)

// Extract builds a DocumentRecord from the full text of one letter. The
// Filename field is left empty; the caller owns it. Penalty amount and the
// upheld determination go through the resolver cascade so conclusion-section
// evidence takes precedence over background narrative.
func Extract(text string) models.DocumentRecord {
	return models.DocumentRecord{
		ReviewRef:         findFirst(reviewRefPattern, text),
		ReviewDate:        findFirst(reviewDatePattern, text),
		BoardDecisionDate: findFirst(boardDatePattern, text),
		ReviewOfficer:     findFirst(reviewOfficerPattern, text),
		PenaltyAmount:     ResolvePenalty(text),
		PenaltyUpheld:     ResolveUpheld(text),
		DueDiligenceFound: dueDiligencePattern.MatchString(text),
		RepeatOffense:     repeatOffensePattern.MatchString(text),
		SectionsViolated:  findSections(text),
	}
}

// findFirst returns the trimmed first capture group, or "" when the pattern
// does not match.
func findFirst(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// findSections collects every cited section reference in order of
// appearance. Duplicates are kept; the sequence is not canonicalized.
func findSections(text string) []string {
	matches := sectionsPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	sections := make([]string, 0, len(matches))
	for _, m := range matches {
		sections = append(sections, m[1])
	}
	return sections
}
