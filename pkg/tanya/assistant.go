// Package tanya wires the workflow together: configuration, provider
// registry, the per-utterance Assistant, and the serving Engine.
package tanya

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rizalarfiyan/tanya/pkg/agent"
	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/executor"
	"github.com/rizalarfiyan/tanya/pkg/intent"
	"github.com/rizalarfiyan/tanya/pkg/llm"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/redact"
	"github.com/rizalarfiyan/tanya/pkg/toolproto"
	"github.com/rizalarfiyan/tanya/pkg/tools"
	"github.com/rizalarfiyan/tanya/pkg/workflow"
)

const (
	NodeClassifyIntent workflow.NodeName = "classify_intent"
	NodeAgent          workflow.NodeName = "agent"
	NodeExecuteTools   workflow.NodeName = "execute_tools"
)

const DefaultRunTimeout = 30 * time.Second

// Assistant owns one compiled workflow and executes independent runs over it.
// Safe for concurrent use; every run gets a fresh state.
type Assistant struct {
	classifier *intent.Classifier
	agent      *agent.Agent
	executor   *executor.Executor
	registry   *tools.Registry
	engine     *workflow.Engine
	obs        metrics.Observer
	runTimeout time.Duration
}

func NewAssistant(cfg Config, model llm.Adapter, registry *tools.Registry) (*Assistant, error) {
	a := &Assistant{
		classifier: intent.NewClassifier(),
		agent:      agent.New(model, registry),
		executor:   executor.New(registry),
		registry:   registry,
		obs:        metrics.NoopObserver{},
		runTimeout: DefaultRunTimeout,
	}
	if cfg.Run.TimeoutMS > 0 {
		a.runTimeout = time.Duration(cfg.Run.TimeoutMS) * time.Millisecond
	}

	g := workflow.NewGraph().
		AddNode(NodeClassifyIntent, a.classify).
		AddNode(NodeAgent, a.agent.Decide).
		AddNode(NodeExecuteTools, a.executor.Run).
		AddEdge(NodeClassifyIntent, NodeAgent).
		AddConditionalEdge(NodeAgent, routeAfterAgent, NodeExecuteTools, workflow.End).
		AddEdge(NodeExecuteTools, workflow.End).
		SetEntryPoint(NodeClassifyIntent)
	engine, err := g.Compile()
	if err != nil {
		return nil, err
	}
	a.engine = engine
	return a, nil
}

func (a *Assistant) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	a.obs = obs
	a.engine.SetObserver(obs)
	a.agent.SetObserver(obs)
	a.executor.SetObserver(obs)
	a.registry.SetObserver(obs)
}

// Run executes one workflow over a fresh state and returns the accumulated
// conversation. Collaborator failures surface inside the returned state, not
// as an error; only contract violations (like a blank utterance) fail.
func (a *Assistant) Run(ctx context.Context, utterance string) (*conversation.State, error) {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return nil, errorsx.New(errorsx.ReasonWorkflowPrecondition, "utterance is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.runTimeout)
	defer cancel()

	runID := uuid.NewString()
	st := conversation.NewState(runID, trimmed)
	start := time.Now()
	a.record(metrics.EventRunStart, runID, "", 0)
	slog.Info("run_start", "run_id", runID, "user_text", redact.Text(trimmed))

	if err := a.engine.Run(ctx, st); err != nil {
		a.record(metrics.EventRunDone, runID, string(st.Intent()), time.Since(start))
		slog.Error("run_failed", "run_id", runID, "reason", string(errorsx.Reason(err)), "error", err)
		return st, err
	}

	a.record(metrics.EventRunDone, runID, string(st.Intent()), time.Since(start))
	slog.Info("run_done",
		"run_id", runID,
		"intent", string(st.Intent()),
		"messages", st.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return st, nil
}

func (a *Assistant) classify(_ context.Context, st *conversation.State) error {
	last, _ := st.Last()
	st.SetIntent(a.classifier.Classify(last.Content))
	return nil
}

// routeAfterAgent is the single conditional edge: a sentinel-prefixed agent
// message goes to the executor, anything else ends the run.
func routeAfterAgent(st *conversation.State) workflow.NodeName {
	last, ok := st.Last()
	if ok && toolproto.IsCall(last.Content) {
		return NodeExecuteTools
	}
	return workflow.End
}

func (a *Assistant) record(name, runID, intentTag string, elapsed time.Duration) {
	tags := map[string]string{"run_id": runID}
	if intentTag != "" {
		tags["intent"] = intentTag
	}
	a.obs.RecordEvent(metrics.MetricsEvent{
		Name:  name,
		Time:  time.Now(),
		Value: float64(elapsed.Milliseconds()),
		Tags:  tags,
	})
}
