// Package llm defines the minimal completion boundary used by the
// intent classifier and workflow planner. Concrete vendor clients are
// out of scope; HTTPClient is a generic reference implementation.
package llm

import "context"

// Response is the outcome of a single completion call.
type Response struct {
	Text    string
	Success bool
	Error   string
}

// Client is the boundary the classifier and planner depend on. No
// streaming is needed for the core engine.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (Response, error)
}
