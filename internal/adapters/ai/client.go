package ai

import "context"

// CompletionRequest describes a single chat completion call.
// System carries the agent persona, Prompt the fully-assembled user prompt.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// CompletionResponse is the model output plus usage accounting.
type CompletionResponse struct {
	Text       string
	TokensUsed int
	Model      string
}

// CompletionClient abstracts the chat model so agents and tests can swap
// the real provider for a stub.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Model() string
}
