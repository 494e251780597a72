package dice

import (
	"context"
	"math/rand"
	"strings"
	"testing"
)

func fixedRoller() *Roller {
	return NewRoller(rand.New(rand.NewSource(42)))
}

func TestRollSingle(t *testing.T) {
	out, err := fixedRoller().handle(context.Background(), map[string]any{"notation": "2d6"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.HasPrefix(out, "Rolled 2d6: ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRollMultiple(t *testing.T) {
	out, err := fixedRoller().handle(context.Background(), map[string]any{
		"notation":  "d20",
		"num_rolls": 3,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(out, "3 times") || !strings.Contains(out, "total") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRollIsDeterministicWithSeed(t *testing.T) {
	args := map[string]any{"notation": "3d8+2", "num_rolls": 2}
	a, err := fixedRoller().handle(context.Background(), args)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	b, err := fixedRoller().handle(context.Background(), args)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if a != b {
		t.Fatalf("same seed must roll the same: %q vs %q", a, b)
	}
}

func TestRollStringNumRolls(t *testing.T) {
	out, err := fixedRoller().handle(context.Background(), map[string]any{
		"notation":  "d6",
		"num_rolls": "2",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(out, "2 times") {
		t.Fatalf("string num_rolls not honored: %q", out)
	}
}

func TestParseNotation(t *testing.T) {
	cases := []struct {
		in      string
		count   int
		sides   int
		mod     int
		wantErr bool
	}{
		{"2d6", 2, 6, 0, false},
		{"d20", 1, 20, 0, false},
		{"3d8+2", 3, 8, 2, false},
		{"2D10-1", 2, 10, -1, false},
		{"banana", 0, 0, 0, true},
		{"0d6", 0, 0, 0, true},
		{"2d1", 0, 0, 0, true},
		{"2d", 0, 0, 0, true},
		{"101d6", 0, 0, 0, true},
	}
	for _, tc := range cases {
		count, sides, mod, err := parseNotation(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseNotation(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseNotation(%q): %v", tc.in, err)
		}
		if count != tc.count || sides != tc.sides || mod != tc.mod {
			t.Fatalf("parseNotation(%q) = %d,%d,%d", tc.in, count, sides, mod)
		}
	}
}

func TestMissingNotation(t *testing.T) {
	if _, err := fixedRoller().handle(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("expected error without notation")
	}
}
