// Package news implements marketing and company news tools backed by a
// NewsAPI-style endpoint.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/configutil"
	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

const maxPageSize = 100

type Config struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

type Client struct {
	cfg    Config
	client *http.Client
}

func New(settings map[string]any) (*Client, error) {
	cfg := Config{BaseURL: "https://newsapi.org"}
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	if err := configutil.RequireString(cfg.APIKey, "tools.news.api_key"); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: configutil.DurationMS(cfg.TimeoutMS, 15*time.Second)},
	}, nil
}

// MarketingTool surfaces recent marketing and sales technology coverage,
// optionally narrowed to one company.
func (c *Client) MarketingTool() tools.Tool {
	return tools.Tool{
		Name:        "get_marketing_news",
		Description: "Get the latest marketing and business news, optionally for a specific company",
		Signature:   "get_marketing_news:company=<name>:num_articles=<count>",
		Handler:     c.handleMarketing,
	}
}

// CompanyTool fetches news mentioning one specific company.
func (c *Client) CompanyTool() tools.Tool {
	return tools.Tool{
		Name:        "get_company_news",
		Description: "Get recent news about a specific company",
		Signature:   "get_company_news:company=<name>:num_articles=<count>",
		Handler:     c.handleCompany,
	}
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type everythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []article `json:"articles"`
}

func (c *Client) handleMarketing(ctx context.Context, args map[string]any) (string, error) {
	company, _ := args["company"].(string)
	query := "marketing technology OR martech OR sales technology OR business intelligence"
	if company != "" {
		query = fmt.Sprintf("%s marketing OR %s sales OR %s business", company, company, company)
	}
	n := clampArticles(intArg(args, "num_articles", 5))
	resp, err := c.everything(ctx, query, n)
	if err != nil {
		return "", err
	}
	if resp.TotalResults == 0 {
		return fmt.Sprintf("No marketing news found for query: %s", query), nil
	}
	return formatArticles(fmt.Sprintf("Marketing News (%d articles found)", len(resp.Articles)), resp.Articles, n), nil
}

func (c *Client) handleCompany(ctx context.Context, args map[string]any) (string, error) {
	company, _ := args["company"].(string)
	if strings.TrimSpace(company) == "" {
		return "", errorsx.New(errorsx.ReasonToolInvoke, "company argument required")
	}
	n := clampArticles(intArg(args, "num_articles", 3))
	resp, err := c.everything(ctx, company, n)
	if err != nil {
		return "", err
	}
	if resp.TotalResults == 0 {
		return fmt.Sprintf("No news found for company: %s", company), nil
	}
	return formatArticles(fmt.Sprintf("%s News (%d articles found)", company, len(resp.Articles)), resp.Articles, n), nil
}

func (c *Client) everything(ctx context.Context, query string, pageSize int) (everythingResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return everythingResponse{}, err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return everythingResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return everythingResponse{}, errors.New(string(body))
	}

	var parsed everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return everythingResponse{}, err
	}
	if parsed.Status != "ok" {
		return everythingResponse{}, errors.New("news api status " + parsed.Status)
	}
	return parsed, nil
}

func formatArticles(header string, articles []article, limit int) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(":\n\n")
	for i, a := range articles {
		if i >= limit {
			break
		}
		desc := a.Description
		if desc == "" {
			desc = "No description available"
		}
		published := a.PublishedAt
		if len(published) >= 10 {
			published = published[:10]
		}
		fmt.Fprintf(&b, "%d. %s\n   Source: %s\n   Published: %s\n   %s\n   %s\n\n",
			i+1, a.Title, a.Source.Name, published, desc, a.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clampArticles(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
