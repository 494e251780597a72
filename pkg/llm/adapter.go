// Package llm defines the provider-neutral text generation contract plus the
// resilience wrappers (retry, circuit breaker) that sit between the agent and
// a concrete provider.
package llm

import (
	"context"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
)

// Context is the full prompt handed to a provider for one generation.
type Context struct {
	Messages []conversation.Message
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
}

// Adapter is implemented by every provider. Generate must honor ctx
// cancellation and return provider rate limits as resilience.RateLimitError.
type Adapter interface {
	Generate(ctx context.Context, input Context) (Response, error)
	Name() string
}
