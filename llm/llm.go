// Package llm provides the generative-model collaborator boundary.
package llm

import "context"

// Completer generates text from a prompt under a bounded token budget. No
// determinism and no absence of fabrication is guaranteed; callers decide
// whether a failure propagates or degrades.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}
