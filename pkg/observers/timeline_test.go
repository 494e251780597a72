package observers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/metrics"
)

func TestTimelineObserverWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	obs := NewTimelineObserver(dir)

	obs.RecordEvent(metrics.MetricsEvent{
		Name: metrics.EventNodeDone,
		Time: time.Now(),
		Tags: map[string]string{
			"run_id": "run-1",
			"node":   "agent",
		},
	})
	_ = obs.Close()

	path := filepath.Join(dir, "run-1.jsonl")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(b), metrics.EventNodeDone) {
		t.Fatalf("expected node_done event in file, got %s", b)
	}
}

func TestRunLatencyObserverEmitsSummary(t *testing.T) {
	obs := NewRunLatencyObserver(nil)
	base := time.Now()
	tags := func(node string) map[string]string {
		m := map[string]string{"run_id": "run-9"}
		if node != "" {
			m["node"] = node
		}
		return m
	}

	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventRunStart, Time: base, Tags: tags("")})
	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventNodeDone, Time: base.Add(time.Millisecond), Tags: tags("classify_intent")})
	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventNodeDone, Time: base.Add(2 * time.Millisecond), Tags: tags("agent")})
	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventRunDone, Time: base.Add(3 * time.Millisecond), Tags: tags("")})

	obs.mu.Lock()
	pending := len(obs.runs)
	obs.mu.Unlock()
	if pending != 0 {
		t.Fatalf("expected run trace flushed after run_done, %d pending", pending)
	}
}
