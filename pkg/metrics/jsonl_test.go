package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONLObserverWritesOneObjectPerEvent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewJSONLObserver(&buf)

	obs.RecordEvent(MetricsEvent{
		Name:  EventRunStart,
		Time:  time.Now(),
		Tags:  map[string]string{"run_id": "run-1"},
		Value: 0,
	})
	obs.RecordEvent(MetricsEvent{
		Name:  EventRunDone,
		Time:  time.Now(),
		Tags:  map[string]string{"run_id": "run-1"},
		Value: 42,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if first["name"] != EventRunStart || first["run_id"] != "run-1" {
		t.Fatalf("unexpected first line %#v", first)
	}
}

func TestJSONLObserverNilWriterDiscards(t *testing.T) {
	obs := NewJSONLObserver(nil)
	obs.RecordEvent(MetricsEvent{Name: EventRunStart, Time: time.Now()})
}
