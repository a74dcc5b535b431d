package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

type serperProvider struct {
	cfg SerperConfig
}

func newSerperProvider(cfg *Config) Provider {
	if cfg == nil || !isEnabled(cfg.Serper.Enabled, true) {
		return nil
	}
	if strings.TrimSpace(cfg.Serper.APIKey) == "" {
		return nil
	}
	return &serperProvider{cfg: cfg.Serper}
}

func (p *serperProvider) Name() string {
	return ProviderSerper
}

type serperItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

// Search issues one request against /search or /news depending on req.Type.
func (p *serperProvider) Search(ctx context.Context, req Request) (*Response, error) {
	path := "/search"
	if req.Type == TypeNews {
		path = "/news"
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + path

	payload := map[string]any{
		"q":   req.Query,
		"num": req.Count,
	}
	country := req.Country
	if country == "" {
		country = p.cfg.DefaultCountry
	}
	if country != "" {
		payload["gl"] = country
	}
	if req.Language != "" {
		payload["hl"] = req.Language
	}
	if code := req.Recency.Code(); code != "" {
		payload["tbs"] = "qdr:" + code
	}

	start := time.Now()
	data, _, err := httputil.PostJSON(ctx, endpoint, map[string]string{
		"X-API-KEY": p.cfg.APIKey,
	}, payload, seconds(p.cfg.TimeoutSecs))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Organic []serperItem `json:"organic"`
		News    []serperItem `json:"news"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("serper response parse error: %w", err)
	}
	items := resp.Organic
	if req.Type == TypeNews {
		items = resp.News
	}

	results := make([]Result, 0, len(items))
	for i, item := range items {
		siteName := strings.TrimSpace(item.Source)
		if siteName == "" {
			siteName = resolveSiteName(item.Link)
		}
		results = append(results, Result{
			Title:     strings.TrimSpace(item.Title),
			URL:       item.Link,
			Snippet:   strings.TrimSpace(item.Snippet),
			Rank:      i + 1,
			Published: item.Date,
			SiteName:  siteName,
		})
	}

	return &Response{
		Query:    req.Query,
		Provider: ProviderSerper,
		TookMs:   time.Since(start).Milliseconds(),
		Results:  results,
	}, nil
}
