package redact

import (
	"strings"
	"testing"
)

func TestTextDisabledPassesThrough(t *testing.T) {
	SetEnabled(false)
	in := "mail me at someone@example.com"
	if got := Text(in); got != in {
		t.Fatalf("disabled redaction changed text: %q", got)
	}
}

func TestTextRedactsWhenEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	got := Text("contact someone@example.com or +62 812-3456-7890, key sk-abcdef123456789012")
	if strings.Contains(got, "example.com") {
		t.Fatalf("email survived redaction: %q", got)
	}
	if !strings.Contains(got, "[REDACTED_PHONE]") {
		t.Fatalf("phone not redacted: %q", got)
	}
	if strings.Contains(got, "sk-abcdef") {
		t.Fatalf("api key survived redaction: %q", got)
	}
}
