// Package llm is the boundary to the hosted model API. The pipeline only
// depends on the Client interface; the request is one prompt string and
// the response is unconstrained text.
package llm

import "context"

// Client sends one analysis prompt and returns the raw model output.
// Implementations own their transport-level timeouts; the pipeline does
// not retry a failed call.
type Client interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to the Client interface. Used by tests to
// stub the model boundary.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Analyze implements Client.
func (f ClientFunc) Analyze(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
