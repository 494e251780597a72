// Package executor implements the tool execution node: decode the agent's
// last message, invoke the requested tool, and append the outcome as the
// final assistant message.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/toolproto"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

type Executor struct {
	registry *tools.Registry
	obs      metrics.Observer
}

func New(registry *tools.Registry) *Executor {
	return &Executor{registry: registry, obs: metrics.NoopObserver{}}
}

func (e *Executor) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	e.obs = obs
}

// Run decodes the most recent message. Without a tool call it passes the
// state through unchanged; the routing edge should keep that path from being
// reached, so it is recorded when it happens. Tool failures come back as
// outcome text and still produce a terminal message.
func (e *Executor) Run(ctx context.Context, st *conversation.State) error {
	last, ok := st.Last()
	if !ok {
		return nil
	}
	call, ok := toolproto.Decode(last.Content)
	if !ok {
		slog.Warn("executor_no_call",
			"run_id", st.RunID,
			"reason", string(errorsx.ReasonProtocolDecode))
		e.obs.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventNoCall,
			Time: time.Now(),
			Tags: map[string]string{
				"run_id": st.RunID,
				"reason": string(errorsx.ReasonProtocolDecode),
			},
		})
		return nil
	}
	result := e.registry.Invoke(ctx, call)
	st.Append(conversation.RoleAssistant,
		fmt.Sprintf("I used the %s tool and got this result:\n\n%s", call.Tool, result))
	return nil
}
