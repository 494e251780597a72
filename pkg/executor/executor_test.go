package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/rizalarfiyan/tanya/pkg/conversation"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/metrics"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

func diceRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry(tools.RegistryOptions{})
	err := r.Register(tools.Tool{
		Name: "roll_dice",
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			if args["notation"] != "2d6" {
				t.Errorf("unexpected notation %v", args["notation"])
			}
			return "Rolled 2d6: 9", nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return r
}

func TestRunInvokesToolAndAppendsResult(t *testing.T) {
	e := New(diceRegistry(t))
	st := conversation.NewState("run-1", "roll 2d6")
	st.Append(conversation.RoleAssistant, "TOOL_CALL:roll_dice:notation=2d6")

	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", st.Len())
	}
	last, _ := st.Last()
	if !strings.Contains(last.Content, "I used the roll_dice tool") ||
		!strings.Contains(last.Content, "Rolled 2d6: 9") {
		t.Fatalf("unexpected result message %q", last.Content)
	}
}

func TestRunUnknownToolStillTerminates(t *testing.T) {
	e := New(diceRegistry(t))
	st := conversation.NewState("run-2", "do something")
	st.Append(conversation.RoleAssistant, "TOOL_CALL:teleport:to=mars")

	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	last, _ := st.Last()
	if !strings.Contains(last.Content, "tool teleport not found") {
		t.Fatalf("unexpected message %q", last.Content)
	}
}

func TestRunWithoutCallPassesThrough(t *testing.T) {
	e := New(diceRegistry(t))
	obs := metrics.NewMemoryObserver()
	e.SetObserver(obs)
	st := conversation.NewState("run-3", "hello")
	st.Append(conversation.RoleAssistant, "Hi! How can I help?")

	if err := e.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Len() != 2 {
		t.Fatalf("pass-through must not append, got %d messages", st.Len())
	}
	noCall := obs.Named(metrics.EventNoCall)
	if len(noCall) != 1 {
		t.Fatalf("expected executor_no_call event")
	}
	if noCall[0].Tags["reason"] != string(errorsx.ReasonProtocolDecode) {
		t.Fatalf("expected protocol_decode reason, got %#v", noCall[0].Tags)
	}
}
