package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newsServer(t *testing.T, total int, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		resp := map[string]any{
			"status":       "ok",
			"totalResults": total,
			"articles": []map[string]any{
				{
					"source":      map[string]any{"name": "Example Wire"},
					"title":       "Acme ships a thing",
					"description": "Acme announced a thing today.",
					"url":         "https://example.com/acme",
					"publishedAt": "2026-08-20T09:00:00Z",
				},
			},
		}
		if total == 0 {
			resp["articles"] = []any{}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(map[string]any{}); err == nil {
		t.Fatalf("expected error without api_key")
	}
}

func TestCompanyNews(t *testing.T) {
	srv := newsServer(t, 1, func(r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test" {
			t.Errorf("missing api key header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "Acme" {
			t.Errorf("unexpected query %q", got)
		}
	})
	defer srv.Close()

	c, err := New(map[string]any{"api_key": "test", "base_url": srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := c.CompanyTool().Handler(context.Background(), map[string]any{"company": "Acme"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	for _, want := range []string{"Acme News", "Acme ships a thing", "Example Wire", "2026-08-20"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestCompanyNewsRequiresCompany(t *testing.T) {
	c, err := New(map[string]any{"api_key": "test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.CompanyTool().Handler(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("expected error without company")
	}
}

func TestMarketingNewsDefaultQuery(t *testing.T) {
	var gotQuery string
	srv := newsServer(t, 1, func(r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
	})
	defer srv.Close()

	c, err := New(map[string]any{"api_key": "test", "base_url": srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := c.MarketingTool().Handler(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(gotQuery, "marketing technology") {
		t.Fatalf("unexpected default query %q", gotQuery)
	}
	if !strings.Contains(out, "Marketing News") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMarketingNewsCompanyQuery(t *testing.T) {
	var gotQuery string
	srv := newsServer(t, 1, func(r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
	})
	defer srv.Close()

	c, err := New(map[string]any{"api_key": "test", "base_url": srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.MarketingTool().Handler(context.Background(), map[string]any{"company": "HubSpot"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(gotQuery, "HubSpot marketing") {
		t.Fatalf("unexpected company query %q", gotQuery)
	}
}

func TestNoResults(t *testing.T) {
	srv := newsServer(t, 0, nil)
	defer srv.Close()

	c, err := New(map[string]any{"api_key": "test", "base_url": srv.URL})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := c.CompanyTool().Handler(context.Background(), map[string]any{"company": "Nobody"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(out, "No news found for company: Nobody") {
		t.Fatalf("unexpected output %q", out)
	}
}
