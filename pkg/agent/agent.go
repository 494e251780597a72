// Package agent implements the decision node: one model call over the
// conversation, prefixed by an intent-conditioned system instruction listing
// the tool catalog and the tool-call line format.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/llm"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/resilience"
	"github.com/rizalarfiyan/tanya/pkg/toolproto"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

type Agent struct {
	model    llm.Adapter
	registry *tools.Registry
	obs      metrics.Observer
}

func New(model llm.Adapter, registry *tools.Registry) *Agent {
	return &Agent{model: model, registry: registry, obs: metrics.NoopObserver{}}
}

func (a *Agent) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	a.obs = obs
}

// Decide appends exactly one assistant message: the raw model output, which
// may or may not encode a tool call. The routing decision belongs to the
// workflow edge, not here. Model failures become a visible assistant message
// instead of an error, so the run always reaches its end.
func (a *Agent) Decide(ctx context.Context, st *conversation.State) error {
	prompt := a.systemPrompt(st.Intent())
	messages := make([]conversation.Message, 0, st.Len()+1)
	messages = append(messages, conversation.Message{Role: conversation.RoleSystem, Content: prompt})
	messages = append(messages, st.Messages()...)

	start := time.Now()
	resp, err := a.model.Generate(ctx, llm.Context{Messages: messages})
	a.obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventLLMGenerate,
		Time:  time.Now(),
		Value: float64(time.Since(start).Milliseconds()),
		Tags: map[string]string{
			"run_id":   st.RunID,
			"provider": a.model.Name(),
			"status":   statusOf(err),
		},
	})
	if err != nil {
		reason := failureReason(err)
		slog.Error("llm_generate_error",
			"run_id", st.RunID,
			"provider", a.model.Name(),
			"reason", string(reason),
			"error", err)
		st.Append(conversation.RoleAssistant, fallbackMessage(reason))
		return nil
	}
	st.Append(conversation.RoleAssistant, resp.Text)
	return nil
}

func (a *Agent) systemPrompt(intent conversation.Intent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant with access to external tools. The user's intent is: %s\n\n", intent)
	b.WriteString("Available tools:\n")
	for _, t := range a.registry.Descriptors() {
		fmt.Fprintf(&b, "- %s: %s\n", t.Signature, t.Description)
	}
	b.WriteString("\nBased on the user's message and intent, decide if you need to call a tool or respond directly.\n")
	fmt.Fprintf(&b, "If you need to call a tool, respond with a single line: %s:tool_name:arg1=value1:arg2=value2\n", toolproto.Sentinel)
	b.WriteString("Otherwise, respond normally.")
	return b.String()
}

func fallbackMessage(reason errorsx.ReasonCode) string {
	return fmt.Sprintf("I'm sorry, I couldn't process that request right now (%s). Please try again.", reason)
}

func failureReason(err error) errorsx.ReasonCode {
	switch {
	case resilience.IsRateLimit(err):
		return errorsx.ReasonLLMRateLimit
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errorsx.ReasonLLMTimeout
	default:
		return errorsx.ReasonLLMGenerate
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
