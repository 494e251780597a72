package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/resilience"
	"github.com/rizalarfiyan/tanya/pkg/toolproto"
)

var ErrToolTimeout = errorsx.New(errorsx.ReasonToolTimeout, "tool timeout")

type RegistryOptions struct {
	Timeout      time.Duration
	Retries      int
	RetryBackoff time.Duration
}

// Registry resolves and invokes tools by name. Registration order is kept so
// the catalog renders deterministically in prompts.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
	opts  RegistryOptions
	obs   metrics.Observer
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 150 * time.Millisecond
	}
	return &Registry{
		tools: make(map[string]Tool),
		opts:  opts,
		obs:   metrics.NoopObserver{},
	}
}

func (r *Registry) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	r.obs = obs
}

func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errorsx.New(errorsx.ReasonToolInvoke, "tool name required")
	}
	if t.Handler == nil {
		return errorsx.New(errorsx.ReasonToolInvoke, "tool handler required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tools[t.Name]; dup {
		return errorsx.New(errorsx.ReasonToolInvoke, "tool already registered: "+t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Descriptors returns the catalog in registration order.
func (r *Registry) Descriptors() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Invoke runs the requested tool and always returns user-presentable text.
// Unknown tools, handler errors, panics, and timeouts all come back as
// messages rather than errors so the conversation keeps moving.
func (r *Registry) Invoke(ctx context.Context, call toolproto.Call) string {
	start := time.Now()
	r.record(metrics.EventToolInvoke, call.Tool, "", start)

	result, err := r.invoke(ctx, call)
	if err != nil {
		reason := errorsx.Reason(err)
		slog.Warn("tool_invoke_failed",
			"tool_name", call.Tool,
			"reason", string(reason),
			"error", err)
		r.record(metrics.EventToolResult, call.Tool, statusOf(reason), time.Now())
		if reason == errorsx.ReasonToolNotFound {
			return fmt.Sprintf("tool %s not found", call.Tool)
		}
		return fmt.Sprintf("%s failed: %v", call.Tool, err)
	}
	slog.Debug("tool_invoke_ok", "tool_name", call.Tool, "duration_ms", time.Since(start).Milliseconds())
	r.record(metrics.EventToolResult, call.Tool, "ok", time.Now())
	return result
}

// invoke resolves and runs the tool, classifying every failure with a reason
// code: tool_not_found, tool_timeout, or tool_invoke.
func (r *Registry) invoke(ctx context.Context, call toolproto.Call) (string, error) {
	tool, ok := r.Resolve(call.Tool)
	if !ok {
		return "", errorsx.New(errorsx.ReasonToolNotFound, "tool "+call.Tool+" not found")
	}
	result, err := r.callWithRetry(ctx, tool, call.Args)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonToolInvoke)
	}
	return result, nil
}

func statusOf(reason errorsx.ReasonCode) string {
	switch reason {
	case errorsx.ReasonToolNotFound:
		return "not_found"
	case errorsx.ReasonToolTimeout:
		return "timeout"
	default:
		return "error"
	}
}

func (r *Registry) callWithRetry(ctx context.Context, tool Tool, args map[string]any) (string, error) {
	policy := resilience.NewRetryPolicy(r.opts.Retries, r.opts.RetryBackoff)
	var result string
	err := policy.DoWithContext(ctx, func() error {
		var callErr error
		result, callErr = r.callWithTimeout(ctx, tool, args)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (r *Registry) callWithTimeout(ctx context.Context, tool Tool, args map[string]any) (string, error) {
	if r.opts.Timeout <= 0 {
		return safeCall(ctx, tool, args)
	}
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		text, err := safeCall(ctx, tool, args)
		ch <- outcome{text: text, err: err}
	}()
	select {
	case out := <-ch:
		return out.text, out.err
	case <-time.After(r.opts.Timeout):
		return "", ErrToolTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func safeCall(ctx context.Context, tool Tool, args map[string]any) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errorsx.New(errorsx.ReasonToolInvoke, fmt.Sprintf("panic in %s: %v", tool.Name, rec))
		}
	}()
	return tool.Handler(ctx, args)
}

func (r *Registry) record(name, tool, status string, at time.Time) {
	tags := map[string]string{"tool": tool}
	if status != "" {
		tags["status"] = status
	}
	r.obs.RecordEvent(metrics.MetricsEvent{Name: name, Time: at, Tags: tags})
}
