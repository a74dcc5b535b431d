package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

type braveProvider struct {
	cfg BraveConfig
}

func newBraveProvider(cfg *Config) Provider {
	if cfg == nil || !isEnabled(cfg.Brave.Enabled, true) {
		return nil
	}
	if strings.TrimSpace(cfg.Brave.APIKey) == "" {
		return nil
	}
	return &braveProvider{cfg: cfg.Brave}
}

func (p *braveProvider) Name() string {
	return ProviderBrave
}

func (p *braveProvider) Search(ctx context.Context, req Request) (*Response, error) {
	if p.cfg.BaseURL == "" {
		return nil, errors.New("brave base_url is empty")
	}
	path := "/web/search"
	if req.Type == TypeNews {
		path = "/news/search"
	}
	searchURL, err := url.Parse(strings.TrimRight(p.cfg.BaseURL, "/") + path)
	if err != nil {
		return nil, err
	}
	queryValues := searchURL.Query()
	queryValues.Set("q", req.Query)
	queryValues.Set("count", strconv.Itoa(req.Count))

	country := req.Country
	if country == "" {
		country = p.cfg.DefaultCountry
	}
	if country != "" {
		queryValues.Set("country", country)
	}
	if lang := braveSearchLang(req.Language); lang != "" {
		queryValues.Set("search_lang", lang)
	}
	if code := req.Recency.Code(); code != "" {
		queryValues.Set("freshness", "p"+code)
	}
	searchURL.RawQuery = queryValues.Encode()

	start := time.Now()
	data, _, err := httputil.GetJSON(ctx, searchURL.String(), map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": p.cfg.APIKey,
	}, seconds(p.cfg.TimeoutSecs))
	if err != nil {
		return nil, err
	}

	type braveEntry struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Age         string `json:"age"`
	}
	var resp struct {
		Web struct {
			Results []braveEntry `json:"results"`
		} `json:"web"`
		Results []braveEntry `json:"results"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("brave response parse error: %w", err)
	}
	entries := resp.Web.Results
	if req.Type == TypeNews {
		entries = resp.Results
	}

	results := make([]Result, 0, len(entries))
	for i, entry := range entries {
		results = append(results, Result{
			Title:     strings.TrimSpace(entry.Title),
			URL:       entry.URL,
			Snippet:   strings.TrimSpace(entry.Description),
			Rank:      i + 1,
			Published: entry.Age,
			SiteName:  resolveSiteName(entry.URL),
		})
	}

	return &Response{
		Query:    req.Query,
		Provider: ProviderBrave,
		TookMs:   time.Since(start).Milliseconds(),
		Results:  results,
	}, nil
}

// braveSearchLang maps locale-style codes to the language codes Brave accepts.
func braveSearchLang(language string) string {
	switch lang := strings.ToLower(strings.TrimSpace(language)); lang {
	case "":
		return ""
	case "zh-cn", "zh", "zh-hans":
		return "zh-hans"
	case "zh-tw", "zh-hk", "zh-hant":
		return "zh-hant"
	default:
		if base, _, ok := strings.Cut(lang, "-"); ok {
			return base
		}
		return lang
	}
}
