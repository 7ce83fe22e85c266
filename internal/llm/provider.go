// Package llm provides the text-generation collaborator used by debate
// agents.
package llm

import "context"

// CompletionRequest carries one prompt to a text-generation backend.
type CompletionRequest struct {
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// CompletionResponse is the backend's text output.
type CompletionResponse struct {
	Content      string `json:"content"`
	TokensUsed   int    `json:"tokens_used"`
	FinishReason string `json:"finish_reason"`
}

// Provider is the interface every text-generation backend implements.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
	HealthCheck(ctx context.Context) error
	Name() string
}
