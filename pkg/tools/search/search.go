// Package search implements a web search tool backed by a Tavily-style
// search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/configutil"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

type Config struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
}

type Client struct {
	cfg    Config
	client *http.Client
}

func New(settings map[string]any) (*Client, error) {
	cfg := Config{
		BaseURL:    "https://api.tavily.com",
		MaxResults: 5,
	}
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	if err := configutil.RequireString(cfg.APIKey, "tools.search.api_key"); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: configutil.DurationMS(cfg.TimeoutMS, 15*time.Second)},
	}, nil
}

func (c *Client) Tool() tools.Tool {
	return tools.Tool{
		Name:        "web_search",
		Description: "Search the web for information about the given query",
		Signature:   "web_search:query=<text>",
		Handler:     c.handle,
	}
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchResponse struct {
	Answer  string         `json:"answer"`
	Results []searchResult `json:"results"`
}

func (c *Client) handle(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", errorsx.New(errorsx.ReasonToolInvoke, "query argument required")
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":     c.cfg.APIKey,
		"query":       query,
		"max_results": c.cfg.MaxResults,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.New(string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return formatResults(query, parsed), nil
}

func formatResults(query string, resp searchResponse) string {
	if resp.Answer == "" && len(resp.Results) == 0 {
		return fmt.Sprintf("No search results found for: %s", query)
	}
	var b strings.Builder
	if resp.Answer != "" {
		b.WriteString(resp.Answer)
		b.WriteString("\n\n")
	}
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Content, r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
