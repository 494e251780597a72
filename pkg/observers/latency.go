package observers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/metrics"
)

// RunLatencyObserver aggregates the stage events of one workflow run and logs
// a single latency summary when the run completes.
type RunLatencyObserver struct {
	mu   sync.Mutex
	runs map[string]*runTrace
	log  *slog.Logger
}

type runTrace struct {
	start        time.Time
	classifyDone time.Time
	agentDone    time.Time
	toolDone     time.Time
	done         time.Time
	intent       string
	tool         string
}

func NewRunLatencyObserver(log *slog.Logger) *RunLatencyObserver {
	if log == nil {
		log = slog.Default()
	}
	return &RunLatencyObserver{
		runs: make(map[string]*runTrace),
		log:  log,
	}
}

func (o *RunLatencyObserver) RecordEvent(ev metrics.MetricsEvent) {
	runID := ""
	if ev.Tags != nil {
		runID = ev.Tags["run_id"]
	}
	if runID == "" {
		return
	}
	o.mu.Lock()
	t := o.runs[runID]
	if t == nil {
		t = &runTrace{}
		o.runs[runID] = t
	}
	switch ev.Name {
	case metrics.EventRunStart:
		if t.start.IsZero() {
			t.start = ev.Time
		}
	case metrics.EventNodeDone:
		switch ev.Tags["node"] {
		case "classify_intent":
			t.classifyDone = ev.Time
			if intent := ev.Tags["intent"]; intent != "" {
				t.intent = intent
			}
		case "agent":
			t.agentDone = ev.Time
		case "execute_tools":
			t.toolDone = ev.Time
		}
	case metrics.EventToolInvoke:
		if tool := ev.Tags["tool"]; tool != "" {
			t.tool = tool
		}
	case metrics.EventRunDone:
		t.done = ev.Time
		if intent := ev.Tags["intent"]; intent != "" {
			t.intent = intent
		}
	}
	if !t.done.IsZero() {
		o.logRunLocked(runID, t)
		delete(o.runs, runID)
	}
	o.mu.Unlock()
}

func (o *RunLatencyObserver) logRunLocked(runID string, t *runTrace) {
	o.log.Info("run_latency",
		"run_id", runID,
		"intent", t.intent,
		"tool", t.tool,
		"classify_ms", durationMs(t.start, t.classifyDone),
		"agent_ms", durationMs(t.classifyDone, t.agentDone),
		"tool_ms", durationMs(t.agentDone, t.toolDone),
		"total_ms", durationMs(t.start, t.done),
	)
}

func durationMs(a, b time.Time) int64 {
	if a.IsZero() || b.IsZero() {
		return -1
	}
	return b.Sub(a).Milliseconds()
}
