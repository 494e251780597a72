package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
)

// DefaultMaxSteps bounds a run regardless of graph shape. The shipped graph
// visits at most three nodes (classify, agent, executor).
const DefaultMaxSteps = 3

// Engine executes a compiled graph. Safe for concurrent runs; each run owns
// its state.
type Engine struct {
	graph    *Graph
	obs      metrics.Observer
	maxSteps int
}

func newEngine(g *Graph) *Engine {
	return &Engine{graph: g, obs: metrics.NoopObserver{}, maxSteps: DefaultMaxSteps}
}

func (e *Engine) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	e.obs = obs
}

func (e *Engine) SetMaxSteps(n int) {
	if n > 0 {
		e.maxSteps = n
	}
}

// Run threads st through the graph from the entry point until End. A state
// without messages is refused up front.
func (e *Engine) Run(ctx context.Context, st *conversation.State) error {
	if st == nil || st.Len() == 0 {
		return errorsx.New(errorsx.ReasonWorkflowPrecondition, "state has no messages")
	}
	current := e.graph.entry
	for steps := 0; current != End; steps++ {
		if steps >= e.maxSteps {
			return errorsx.New(errorsx.ReasonWorkflowGraph, "step cap exceeded")
		}
		if err := ctx.Err(); err != nil {
			return errorsx.Wrap(err, interruptReason(err))
		}

		fn := e.graph.nodes[current]
		e.record(metrics.EventNodeEnter, st.RunID, current)
		start := time.Now()
		if err := fn(ctx, st); err != nil {
			slog.Error("workflow_node_failed", "node", string(current), "run_id", st.RunID, "error", err)
			return errorsx.Wrap(err, errorsx.ReasonWorkflowGraph)
		}
		e.record(metrics.EventNodeDone, st.RunID, current)
		slog.Debug("workflow_node_done",
			"node", string(current),
			"run_id", st.RunID,
			"duration_ms", time.Since(start).Milliseconds())

		next, err := e.next(current, st)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// interruptReason labels a run cut short by its context: an expired deadline
// is a run timeout, anything else is a caller cancellation.
func interruptReason(err error) errorsx.ReasonCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return errorsx.ReasonRunTimeout
	}
	return errorsx.ReasonRunCanceled
}

func (e *Engine) next(current NodeName, st *conversation.State) (NodeName, error) {
	if cond, ok := e.graph.conditionals[current]; ok {
		picked := cond.pick(st)
		for _, t := range cond.targets {
			if t == picked {
				return picked, nil
			}
		}
		return End, graphErr("conditional edge from %q picked undeclared target %q", current, picked)
	}
	if to, ok := e.graph.edges[current]; ok {
		return to, nil
	}
	return End, nil
}

func (e *Engine) record(name, runID string, node NodeName) {
	e.obs.RecordEvent(metrics.MetricsEvent{
		Name: name,
		Time: time.Now(),
		Tags: map[string]string{"run_id": runID, "node": string(node)},
	})
}
