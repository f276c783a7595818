package oracle

import "context"

// Oracle is the scoring backend: it takes a rendered evaluation prompt and
// returns the model's raw text response. Implementations wrap one LLM
// provider; the grading pipeline treats the response as opaque text and
// extracts structure downstream.
type Oracle interface {
	// Complete sends a prompt to the model and returns the raw response text.
	Complete(ctx context.Context, model string, prompt string) (string, error)

	// Name returns the oracle's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}
