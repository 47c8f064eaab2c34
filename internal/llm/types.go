package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model answers without any choices.
var ErrEmptyCompletion = errors.New("model returned no completion choices")

// Provider sends a single prompt to a hosted model and returns its raw text.
// Implementations must not retry; failures are the caller's problem.
type Provider interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}
