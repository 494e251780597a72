package conversation

import "testing"

func TestStateAppendPreservesOrder(t *testing.T) {
	st := NewState("run-1", "hello")
	st.Append(RoleAssistant, "hi there")
	st.Append(RoleAssistant, "anything else?")

	msgs := st.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[2].Content != "anything else?" {
		t.Fatalf("unexpected last message: %+v", msgs[2])
	}

	last, ok := st.Last()
	if !ok || last.Content != "anything else?" {
		t.Fatalf("Last returned %+v ok=%v", last, ok)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	st := NewState("run-1", "hello")
	msgs := st.Messages()
	msgs[0].Content = "mutated"

	fresh := st.Messages()
	if fresh[0].Content != "hello" {
		t.Fatalf("state leaked internal slice: %q", fresh[0].Content)
	}
}

func TestSetIntentDefaultsToGeneral(t *testing.T) {
	st := NewState("run-1", "hello")
	if st.Intent() != IntentGeneral {
		t.Fatalf("fresh state intent = %s", st.Intent())
	}
	st.SetIntent(IntentDice)
	if st.Intent() != IntentDice {
		t.Fatalf("intent = %s after SetIntent", st.Intent())
	}
	st.SetIntent(Intent("  "))
	if st.Intent() != IntentGeneral {
		t.Fatalf("blank intent should fall back to general, got %s", st.Intent())
	}
}
