package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePenaltyPrefersFinalPhraseInConclusion(t *testing.T) {
	text := "The Board imposed a penalty of $9,000.00 last year.\n\n" +
		"In summary, the amount of $1,000.00 was reconsidered.\n" +
		"The final penalty is $4,500.00.\n\n" +
		"Signed."
	assert.Equal(t, "4,500.00", ResolvePenalty(text))
}

func TestResolvePenaltyFallsBackToAnyAmountInConclusion(t *testing.T) {
	text := "Background mentions $9,000.00.\n\n" +
		"In summary, the penalty of $2,750.00 stands.\n\n" +
		"Signed."
	assert.Equal(t, "2,750.00", ResolvePenalty(text))
}

func TestResolvePenaltyFallsBackToDocumentTail(t *testing.T) {
	// The conclusion states no amount, so the resolver falls through to the
	// closing-pages scan.
	text := strings.Repeat("Routine narrative without figures. ", 100) +
		"\n\nIn summary, the matter is addressed below.\n\n" +
		"The employer must remit $1,234.56 within 30 days."
	assert.Equal(t, "1,234.56", ResolvePenalty(text))
}

func TestResolvePenaltyIgnoresAmountOutsideTail(t *testing.T) {
	// The only amount sits more than tailWindow runes before the end and the
	// conclusion has none, so no tier matches.
	text := "An early figure of $9,999.99 appears here. " +
		strings.Repeat("Filler text with no dollar figures at all. ", 100) +
		"\n\nIn summary, no amount is restated here.\n\nSigned."
	assert.Equal(t, "", ResolvePenalty(text))
}

func TestResolvePenaltyEmptyWhenNoAmount(t *testing.T) {
	assert.Equal(t, "", ResolvePenalty("No dollar figures appear anywhere in this letter."))
}

func TestResolveUpheldConclusionBeatsDocumentRescind(t *testing.T) {
	text := "Earlier correspondence said the penalty was rescinded in part.\n\n" +
		"In summary, I confirm the penalty as imposed.\n\n" +
		"Signed."
	assert.True(t, ResolveUpheld(text))
}

func TestResolveUpheldConclusionRescind(t *testing.T) {
	text := "The officer would normally uphold the penalty in such cases.\n\n" +
		"In summary, I rescind the penalty in full.\n\n" +
		"Signed."
	assert.False(t, ResolveUpheld(text))
}

func TestResolveUpheldWholeDocumentFallback(t *testing.T) {
	// No conclusion marker, so the uphold language is only found by the
	// whole-document scan.
	text := "After review I have upheld the penalty imposed by the Board."
	assert.True(t, ResolveUpheld(text))
}

func TestResolveUpheldDefaultsFalse(t *testing.T) {
	assert.False(t, ResolveUpheld("The letter reaches no stated verdict."))
}

func TestResolveUpheldPassiveForm(t *testing.T) {
	text := "In summary, the penalty was confirmed on review.\n\nSigned."
	assert.True(t, ResolveUpheld(text))
}
