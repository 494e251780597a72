package tanya

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/llm"
	"github.com/rizalarfiyan/tanya/pkg/logging"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/observers"
	"github.com/rizalarfiyan/tanya/pkg/redact"
	"github.com/rizalarfiyan/tanya/pkg/resilience"
	"github.com/rizalarfiyan/tanya/pkg/runner"
	"github.com/rizalarfiyan/tanya/pkg/tools"
	"github.com/rizalarfiyan/tanya/pkg/transports"
)

// Engine drives the assistant from a transport: every inbound request becomes
// one independent workflow run, and the final assistant message is sent back
// on the same connection.
type Engine struct {
	cfg        Config
	assistant  *Assistant
	transport  transports.Transport
	providers  *ProviderRegistry
	runner     *runner.LifecycleRunner
	asyncObs   *metrics.AsyncObserver
	timeline   *observers.TimelineObserver
	eventsFile *os.File
	ctx        context.Context
	cancel     context.CancelFunc
	inflight   sync.WaitGroup
}

type EngineOptions struct {
	Config    Config
	Providers *ProviderRegistry
	Transport transports.Transport
	Tools     *tools.Registry
	// Breaker guards the model; nil uses defaults.
	Breaker *resilience.CircuitBreaker
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	cfg := opts.Config
	logging.SetDefault(cfg.LogLevel, cfg.LogFormat)
	redact.SetEnabled(cfg.Privacy.RedactPII)

	slog.Info("tanya_init",
		"environment", cfg.Environment,
		"llm_provider", cfg.Vendors.LLM.Provider,
		"transport", cfg.Transports.Provider,
	)

	providers := opts.Providers
	if providers == nil {
		providers = NewProviderRegistry()
	}

	obsLog := logging.NewComponentLogger(slog.Default(), "observability")
	latencyObs := observers.NewRunLatencyObserver(obsLog)
	logObs := observers.NewLoggerObserver(obsLog)
	obsList := []metrics.Observer{latencyObs, logObs}
	var timeline *observers.TimelineObserver
	if dir := strings.TrimSpace(cfg.Observability.ArtifactsDir); dir != "" {
		if cfg.Observability.RetentionDays > 0 {
			_, _ = observers.PurgeArtifacts(dir, time.Duration(cfg.Observability.RetentionDays)*24*time.Hour)
		}
		timeline = observers.NewTimelineObserver(dir)
		obsList = append(obsList, timeline)
	}
	var eventsFile *os.File
	if path := strings.TrimSpace(cfg.Observability.EventsFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open events file: %w", err)
		}
		eventsFile = f
		obsList = append(obsList, metrics.NewJSONLObserver(f))
	}
	var sink metrics.Observer = observers.NewMultiObserver(obsList...)
	if rate := cfg.Observability.SampleRate; rate > 0 && rate < 1 {
		sink = metrics.NewSamplingObserver(sink, rate)
	}
	asyncObs := metrics.NewAsyncObserver(sink, 2048)

	model, err := providers.BuildLLM(cfg.Vendors.LLM.Provider, cfg)
	if err != nil {
		return nil, err
	}
	guarded := llm.NewCircuitBreakerAdapter(model, opts.Breaker)
	guarded.SetObserver(asyncObs)

	registry := opts.Tools
	if registry == nil {
		registry = tools.NewRegistry(toolOptionsFromConfig(cfg))
	}

	assistant, err := NewAssistant(cfg, guarded, registry)
	if err != nil {
		return nil, err
	}
	assistant.SetObserver(asyncObs)

	e := &Engine{
		cfg:        cfg,
		assistant:  assistant,
		transport:  opts.Transport,
		providers:  providers,
		asyncObs:   asyncObs,
		timeline:   timeline,
		eventsFile: eventsFile,
	}
	e.runner = runner.NewLifecycleRunner(drainFunc(e.drain), runner.Hooks{}, 15*time.Second)
	return e, nil
}

func (e *Engine) Assistant() *Assistant { return e.assistant }

func (e *Engine) Transport() transports.Transport { return e.transport }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Health() error {
	if e.transport == nil {
		return fmt.Errorf("missing transport")
	}
	return nil
}

func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	if e.transport != nil {
		if err := e.transport.Start(e.ctx); err != nil {
			return err
		}
		go e.serveLoop(e.ctx)
	}
	go func() {
		_ = e.runner.Run(e.ctx)
	}()
	return nil
}

func (e *Engine) Stop() error {
	if e.cancel != nil {
		e.cancel()
	}
	return e.runner.Stop()
}

func (e *Engine) serveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-e.transport.Recv():
			if !ok {
				return
			}
			e.inflight.Add(1)
			go func(req transports.Request) {
				defer e.inflight.Done()
				e.handle(ctx, req)
			}(req)
		}
	}
}

func (e *Engine) handle(ctx context.Context, req transports.Request) {
	st, err := e.assistant.Run(ctx, req.Text)
	reply := "I'm sorry, something went wrong. Please try again."
	if err != nil {
		slog.Error("request_failed", "trace_id", req.TraceID, "error", err)
	} else if last, ok := st.Last(); ok {
		reply = last.Content
	}
	if err := e.transport.Send(transports.Response{
		ConnID:  req.ConnID,
		TraceID: req.TraceID,
		Text:    reply,
	}); err != nil {
		slog.Warn("transport_send_failed", "trace_id", req.TraceID, "error", err)
	}
}

// drain waits for in-flight runs, then flushes observers.
func (e *Engine) drain() error {
	if e.transport != nil {
		_ = e.transport.Stop()
	}
	e.inflight.Wait()
	if e.asyncObs != nil {
		e.asyncObs.Close()
	}
	if e.timeline != nil {
		_ = e.timeline.Close()
	}
	if e.eventsFile != nil {
		_ = e.eventsFile.Close()
	}
	return nil
}

func toolOptionsFromConfig(cfg Config) tools.RegistryOptions {
	return tools.RegistryOptions{
		Timeout:      time.Duration(cfg.Tools.TimeoutMS) * time.Millisecond,
		Retries:      cfg.Tools.Retries,
		RetryBackoff: time.Duration(cfg.Tools.RetryBackoffMS) * time.Millisecond,
	}
}

type drainFunc func() error

func (f drainFunc) Drain() error { return f() }
