package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

type exaProvider struct {
	cfg ExaConfig
	now func() time.Time
}

func newExaProvider(cfg *Config) Provider {
	if cfg == nil || !isEnabled(cfg.Exa.Enabled, true) {
		return nil
	}
	if strings.TrimSpace(cfg.Exa.APIKey) == "" {
		return nil
	}
	return &exaProvider{cfg: cfg.Exa, now: time.Now}
}

func (p *exaProvider) Name() string {
	return ProviderExa
}

func (p *exaProvider) Search(ctx context.Context, req Request) (*Response, error) {
	endpoint := resolveEndpoint(p.cfg.BaseURL, "/search")
	if endpoint == "" {
		return nil, fmt.Errorf("exa base_url is empty")
	}

	payload := map[string]any{
		"query":      req.Query,
		"type":       p.cfg.Type,
		"numResults": req.Count,
		"contents": map[string]any{
			"highlights": map[string]any{"maxCharacters": 300},
		},
	}
	if req.Type == TypeNews {
		payload["category"] = "news"
	}
	if req.Country != "" {
		payload["userLocation"] = strings.ToUpper(req.Country)
	}
	if since := p.publishedSince(req.Recency); since != "" {
		payload["startPublishedDate"] = since
	}

	start := time.Now()
	data, _, err := httputil.PostJSON(ctx, endpoint, map[string]string{
		"x-api-key": p.cfg.APIKey,
		"accept":    "application/json",
	}, payload, seconds(p.cfg.TimeoutSecs))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []struct {
			Title         string   `json:"title"`
			URL           string   `json:"url"`
			PublishedDate string   `json:"publishedDate"`
			Text          string   `json:"text"`
			Highlights    []string `json:"highlights"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("exa response parse error: %w", err)
	}

	results := make([]Result, 0, len(resp.Results))
	for i, entry := range resp.Results {
		snippet := ""
		if len(entry.Highlights) > 0 {
			snippet = strings.TrimSpace(entry.Highlights[0])
		} else if entry.Text != "" {
			snippet, _ = stringutil.TruncateRunes(strings.TrimSpace(entry.Text), 240)
		}
		results = append(results, Result{
			Title:     strings.TrimSpace(entry.Title),
			URL:       entry.URL,
			Snippet:   snippet,
			Rank:      i + 1,
			Published: entry.PublishedDate,
			SiteName:  resolveSiteName(entry.URL),
		})
	}

	return &Response{
		Query:    req.Query,
		Provider: ProviderExa,
		TookMs:   time.Since(start).Milliseconds(),
		Results:  results,
	}, nil
}

func (p *exaProvider) publishedSince(recency Recency) string {
	var window time.Duration
	switch recency {
	case RecencyDay:
		window = 24 * time.Hour
	case RecencyWeek:
		window = 7 * 24 * time.Hour
	case RecencyMonth:
		window = 30 * 24 * time.Hour
	default:
		return ""
	}
	return p.now().Add(-window).UTC().Format(time.RFC3339)
}

func resolveEndpoint(baseURL, path string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.TrimRight(trimmed, "/") + path
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = path
		return parsed.String()
	}
	return strings.TrimRight(trimmed, "/") + path
}

func resolveSiteName(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
