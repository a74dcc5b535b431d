package fetch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

// jinaProvider reads pages through the Jina reader, which renders them as markdown.
type jinaProvider struct {
	cfg JinaConfig
}

func newJinaProvider(cfg *Config) Provider {
	if cfg == nil {
		return nil
	}
	return &jinaProvider{cfg: cfg.Jina}
}

func (p *jinaProvider) Name() string {
	return ProviderJina
}

func (p *jinaProvider) Fetch(ctx context.Context, req Request) (*Response, error) {
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/" + req.URL
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	headers := httputil.MergeHeaders(map[string]string{
		"Accept":          "text/plain",
		"X-Return-Format": "markdown",
	}, httputil.BearerHeader(p.cfg.APIKey))

	start := time.Now()
	data, status, err := httputil.Do(request, headers, req.Timeout)
	if err != nil {
		return nil, err
	}
	return &Response{
		URL:         req.URL,
		FinalURL:    req.URL,
		Status:      status,
		ContentType: "text/markdown",
		Text:        string(data),
		Provider:    ProviderJina,
		TookMs:      time.Since(start).Milliseconds(),
	}, nil
}
