package metrics

import "time"

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

// Event names emitted by the workflow core.
const (
	EventRunStart      = "run_start"
	EventRunDone       = "run_done"
	EventNodeEnter     = "node_enter"
	EventNodeDone      = "node_done"
	EventLLMGenerate   = "llm_generate"
	EventToolInvoke    = "tool_invoke"
	EventToolResult    = "tool_result"
	EventNoCall        = "executor_no_call"
	EventRateLimit     = "rate_limit"
	EventBreakerOpen   = "breaker_open"
	EventBreakerClose  = "breaker_close"
	EventBreakerDenied = "breaker_denied"
)

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type Flusher interface {
	Flush() error
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}
