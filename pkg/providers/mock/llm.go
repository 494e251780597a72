// Package mock provides a scripted llm.Adapter for tests and offline demos.
package mock

import (
	"context"
	"sync"

	"github.com/rizalarfiyan/tanya/pkg/llm"
)

type LLMConfig struct {
	// Responses are played back in order; the last one repeats.
	Responses []string
	// Err, when set, fails every Generate call.
	Err error
}

type LLMAdapter struct {
	cfg  LLMConfig
	mu   sync.Mutex
	next int

	// Prompts records every generation input for assertions.
	Prompts []llm.Context
}

func NewLLMAdapter(cfg LLMConfig) *LLMAdapter {
	if len(cfg.Responses) == 0 {
		cfg.Responses = []string{"mock response"}
	}
	return &LLMAdapter{cfg: cfg}
}

func (a *LLMAdapter) Name() string { return "mock_llm" }

func (a *LLMAdapter) Generate(_ context.Context, input llm.Context) (llm.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Prompts = append(a.Prompts, input)
	if a.cfg.Err != nil {
		return llm.Response{}, a.cfg.Err
	}
	text := a.cfg.Responses[a.next]
	if a.next < len(a.cfg.Responses)-1 {
		a.next++
	}
	return llm.Response{Text: text}, nil
}
