package observers

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/metrics"
)

func runEvents(runID string, start time.Time) []metrics.MetricsEvent {
	return []metrics.MetricsEvent{
		{Name: metrics.EventRunStart, Time: start, Tags: map[string]string{"run_id": runID}},
		{Name: metrics.EventNodeDone, Time: start.Add(5 * time.Millisecond),
			Tags: map[string]string{"run_id": runID, "node": "classify_intent", "intent": "dice"}},
		{Name: metrics.EventNodeDone, Time: start.Add(120 * time.Millisecond),
			Tags: map[string]string{"run_id": runID, "node": "agent"}},
		{Name: metrics.EventToolInvoke, Time: start.Add(121 * time.Millisecond),
			Tags: map[string]string{"run_id": runID, "tool": "roll_dice"}},
		{Name: metrics.EventNodeDone, Time: start.Add(150 * time.Millisecond),
			Tags: map[string]string{"run_id": runID, "node": "execute_tools"}},
		{Name: metrics.EventRunDone, Time: start.Add(151 * time.Millisecond),
			Tags: map[string]string{"run_id": runID}},
	}
}

func TestRunLatencyObserverEmitsOneSummaryPerRun(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	obs := NewRunLatencyObserver(log)

	start := time.Now()
	for _, ev := range runEvents("run-1", start) {
		obs.RecordEvent(ev)
	}

	out := buf.String()
	if n := strings.Count(out, "run_latency"); n != 1 {
		t.Fatalf("expected exactly one summary, got %d:\n%s", n, out)
	}
	for _, want := range []string{"run_id=run-1", "intent=dice", "tool=roll_dice", "total_ms=151"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if len(obs.runs) != 0 {
		t.Fatalf("completed run not released: %d traces held", len(obs.runs))
	}
}

func TestRunLatencyObserverIgnoresUntaggedEvents(t *testing.T) {
	var buf bytes.Buffer
	obs := NewRunLatencyObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	obs.RecordEvent(metrics.MetricsEvent{Name: metrics.EventRunDone, Time: time.Now()})
	if buf.Len() != 0 {
		t.Fatalf("unexpected output for event without run_id: %s", buf.String())
	}
}
