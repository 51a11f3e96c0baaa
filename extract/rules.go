package extract

import "regexp"

// The penalty and upheld resolvers are ordered rule tables evaluated with
// first-match-wins semantics. Representing the fallback tiers as data keeps
// the precedence rules checkable: conclusion-scoped rules sit above
// whole-document rules, and within the conclusion every uphold rule sits
// above every rescind rule.

// searchScope selects which slice of the document a rule is matched against.
type searchScope int

const (
	// scopeConclusion matches against the isolated conclusion section.
	scopeConclusion searchScope = iota
	// scopeTail matches against the last tailWindow runes of the full text.
	scopeTail
	// scopeDocument matches against the full text.
	scopeDocument
)

// tailWindow bounds the last-resort penalty scan to the closing pages of a
// letter instead of the whole document.
const tailWindow = 2000

var (
	finalPenaltyPattern = regexp.MustCompile(`(?i)final penalty[^$]*\$\s?([0-9,]+\.\d{2})`)
	moneyPattern        = regexp.MustCompile(`\$\s?([0-9,]+\.\d{2})`)

	upholdPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(confirm|confirms|confirmed|uphold|upholds|upheld|maintain|maintains|maintained)\b.*penalt`),
		regexp.MustCompile(`(?i)penalt.*\b(is|are|was|were)\s+(confirmed|upheld|maintained)\b`),
	}
	rescindPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(rescind|rescinds|rescinded|vary|varies|varied|cancel|cancels|cancelled|canceled)\b.*penalt`),
		regexp.MustCompile(`(?i)penalt.*\b(is|are|was|were)\s+(rescinded|varied|cancelled|canceled|set aside)\b`),
	}
)

// amountRule is one tier of the penalty cascade.
type amountRule struct {
	re    *regexp.Regexp
	where searchScope
}

// penaltyRules: an explicit "final penalty ... $X.XX" phrase in the
// conclusion, then any dollar amount in the conclusion, then any dollar
// amount in the document tail.
var penaltyRules = []amountRule{
	{finalPenaltyPattern, scopeConclusion},
	{moneyPattern, scopeConclusion},
	{moneyPattern, scopeTail},
}

// verdictRule is one tier of the upheld cascade.
type verdictRule struct {
	re     *regexp.Regexp
	where  searchScope
	upheld bool
}

// upheldRules: conclusion uphold patterns short-circuit before any rescind
// pattern is tested, then conclusion rescind patterns, then a
// whole-document uphold scan. The original cascade has no whole-document
// rescind tier; adding one would be a no-op while the default verdict is
// false, so the asymmetry is kept. Flipping the default would require the
// symmetric rule here.
var upheldRules = buildUpheldRules()

func buildUpheldRules() []verdictRule {
	var rules []verdictRule
	for _, re := range upholdPatterns {
		rules = append(rules, verdictRule{re, scopeConclusion, true})
	}
	for _, re := range rescindPatterns {
		rules = append(rules, verdictRule{re, scopeConclusion, false})
	}
	for _, re := range upholdPatterns {
		rules = append(rules, verdictRule{re, scopeDocument, true})
	}
	return rules
}

// regionFor slices the document for a scope. The conclusion is computed by
// the caller once and passed in to keep the resolvers deterministic.
func regionFor(where searchScope, text, conclusion string) string {
	switch where {
	case scopeConclusion:
		return conclusion
	case scopeTail:
		runes := []rune(text)
		if len(runes) > tailWindow {
			return string(runes[len(runes)-tailWindow:])
		}
		return text
	default:
		return text
	}
}

// ResolvePenalty locates the final penalty amount and returns its numeric
// string (e.g. "4,500.00"), or "" when no tier matches. It never fails.
func ResolvePenalty(text string) string {
	conclusion := IsolateConclusion(text)
	for _, rule := range penaltyRules {
		if m := rule.re.FindStringSubmatch(regionFor(rule.where, text, conclusion)); m != nil {
			return m[1]
		}
	}
	return ""
}

// ResolveUpheld reports whether the original penalty decision was confirmed
// on review. Conclusion-section evidence always takes precedence over
// whole-document evidence; when nothing matches the verdict defaults to
// false.
func ResolveUpheld(text string) bool {
	conclusion := IsolateConclusion(text)
	for _, rule := range upheldRules {
		if rule.re.MatchString(regionFor(rule.where, text, conclusion)) {
			return rule.upheld
		}
	}
	return false
}
