// Package websearch runs the rewrite, search and fetch stages for a question
// and assembles the results into a prompt-ready Bundle.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/beeper/ai-websearch/pkg/fetch"
	"github.com/beeper/ai-websearch/pkg/rewrite"
	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
)

// PageFetcher fetches a batch of URLs, returning pages aligned with urls.
type PageFetcher interface {
	FetchMany(ctx context.Context, urls []string, maxConcurrent int, opts fetch.Options) []fetch.Page
}

// Query is one request. Zero-valued limits fall back to the configured defaults.
type Query struct {
	Text     string
	Location string
	Language string
	Country  string

	ResultsPerQuery  int
	FetchTopN        int
	MaxContentLength int
	MaxConcurrent    int
	FetchTimeout     time.Duration
}

func (q Query) withDefaults(d RequestDefaults) Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Location = strings.TrimSpace(q.Location)
	if q.Language == "" {
		q.Language = d.Language
	}
	if q.Country == "" {
		q.Country = d.Country
	}
	if q.ResultsPerQuery <= 0 {
		q.ResultsPerQuery = d.ResultsPerQuery
	}
	if q.FetchTopN <= 0 {
		q.FetchTopN = d.FetchTopN
	}
	if q.MaxContentLength <= 0 {
		q.MaxContentLength = d.MaxContentLength
	}
	if q.MaxConcurrent <= 0 {
		q.MaxConcurrent = d.MaxConcurrent
	}
	if q.FetchTimeout <= 0 {
		q.FetchTimeout = d.fetchTimeout()
	}
	return q
}

// Skill owns the three pipeline stages. It holds no per-request state and
// may be shared between goroutines.
type Skill struct {
	rewriter rewrite.Rewriter
	searcher search.Provider
	fetcher  PageFetcher
	defaults RequestDefaults
	log      zerolog.Logger
}

// New validates cfg and builds every stage from it.
func New(cfg *Config, log zerolog.Logger) (*Skill, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	searcher, err := search.New(&cfg.Search)
	if err != nil {
		if errors.Is(err, search.ErrMissingAPIKey) {
			return nil, &ConfigError{
				Field: "search." + cfg.Search.Provider + ".enabled",
				Env:   searchKeyEnv(cfg.Search.Provider),
				Err:   ErrMissingSearchKey,
			}
		}
		return nil, &ConfigError{Field: "search.provider", Env: "SEARCH_PROVIDER", Err: err}
	}
	fetcher, err := fetch.New(&cfg.Fetch, log)
	if err != nil {
		return nil, &ConfigError{Field: "fetch.provider", Env: "FETCH_PROVIDER", Err: err}
	}
	rewriter := rewrite.New(&cfg.Rewrite, log)

	log.Debug().
		Str("search_provider", searcher.Name()).
		Str("fetch_provider", fetcher.ProviderName()).
		Bool("llm_rewrite", cfg.Rewrite.UsesLLM()).
		Msg("Web search skill configured")
	return NewWithComponents(rewriter, searcher, fetcher, cfg.Defaults, log), nil
}

// NewWithComponents assembles a Skill from prebuilt stages.
func NewWithComponents(rewriter rewrite.Rewriter, searcher search.Provider, fetcher PageFetcher, defaults RequestDefaults, log zerolog.Logger) *Skill {
	return &Skill{
		rewriter: rewriter,
		searcher: searcher,
		fetcher:  fetcher,
		defaults: defaults.withDefaults(),
		log:      log.With().Str("component", "websearch").Logger(),
	}
}

// Run answers q with a Bundle. Fetch failures are reported on the pages;
// search failures abort the request unless the skip policy is configured.
func (s *Skill) Run(ctx context.Context, q Query) (*Bundle, error) {
	q = q.withDefaults(s.defaults)
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}
	log := logutil.FromContext(ctx, s.log).With().
		Str("request_id", xid.New().String()).
		Str("query", q.Text).
		Logger()
	ctx = log.WithContext(ctx)

	bundle := &Bundle{Query: q.Text}

	start := time.Now()
	plan := s.rewriter.Rewrite(ctx, rewrite.Input{Query: q.Text, Location: q.Location, Language: q.Language})
	bundle.Plan = plan
	bundle.Queries = plan.Queries
	bundle.Timings.RewriteMs = time.Since(start).Milliseconds()
	log.Debug().
		Strs("queries", plan.Queries).
		Str("strategy", string(plan.Strategy)).
		Str("language", plan.Language).
		Str("recency", string(plan.Recency)).
		Str("type", string(plan.Type)).
		Int64("duration_ms", bundle.Timings.RewriteMs).
		Msg("Rewrote query")

	start = time.Now()
	sources, failures, err := s.searchAll(ctx, plan, q)
	bundle.Timings.SearchMs = time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	bundle.Sources = sources
	bundle.SearchErrors = failures
	log.Debug().
		Int("sources", len(sources)).
		Int64("duration_ms", bundle.Timings.SearchMs).
		Msg("Search finished")

	start = time.Now()
	urls := TopURLs(sources, q.FetchTopN)
	bundle.Pages = s.fetcher.FetchMany(ctx, urls, q.MaxConcurrent, fetch.Options{
		Timeout:   q.FetchTimeout,
		MaxLength: q.MaxContentLength,
	})
	bundle.Timings.FetchMs = time.Since(start).Milliseconds()

	stats := bundle.Stats()
	log.Debug().
		Int("fetched", stats.Fetched).
		Int("succeeded", stats.Succeeded).
		Int64("duration_ms", bundle.Timings.FetchMs).
		Msg("Fetch finished")
	log.Info().
		Int("sources", stats.Sources).
		Int("succeeded", stats.Succeeded).
		Int64("total_ms", bundle.Timings.TotalMs()).
		Msg("Web search completed")
	return bundle, nil
}

// searchAll runs the plan's queries one after another and merges the results.
func (s *Skill) searchAll(ctx context.Context, plan rewrite.Plan, q Query) ([]search.Result, []SearchFailure, error) {
	var (
		merged   []search.Result
		failures []SearchFailure
		lastErr  error
	)
	seen := make(map[string]struct{})
	for _, query := range plan.Queries {
		resp, err := s.searcher.Search(ctx, search.Request{
			Query:    query,
			Count:    q.ResultsPerQuery,
			Type:     plan.Type,
			Country:  q.Country,
			Language: plan.Language,
			Recency:  plan.Recency,
		})
		if err != nil {
			searchErr := &SearchError{Query: query, Provider: s.searcher.Name(), Err: err}
			if s.defaults.OnSearchError != OnSearchErrorSkip || ctx.Err() != nil {
				return nil, nil, searchErr
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("search_query", query).Msg("Search failed, skipping query")
			failures = append(failures, SearchFailure{Query: query, Provider: searchErr.Provider, Error: err.Error()})
			lastErr = searchErr
			continue
		}
		merged = appendUnique(merged, seen, resp.Results)
	}
	if len(failures) == len(plan.Queries) && lastErr != nil {
		return nil, nil, fmt.Errorf("all %d searches failed: %w", len(failures), lastErr)
	}
	return merged, failures, nil
}

// MergeSources concatenates result lists, keeping the first occurrence of each URL.
func MergeSources(lists ...[]search.Result) []search.Result {
	var merged []search.Result
	seen := make(map[string]struct{})
	for _, list := range lists {
		merged = appendUnique(merged, seen, list)
	}
	return merged
}

func appendUnique(merged []search.Result, seen map[string]struct{}, results []search.Result) []search.Result {
	for _, result := range results {
		if result.URL == "" {
			continue
		}
		if _, ok := seen[result.URL]; ok {
			continue
		}
		seen[result.URL] = struct{}{}
		merged = append(merged, result)
	}
	return merged
}

// TopURLs returns the URLs of the first n sources.
func TopURLs(sources []search.Result, n int) []string {
	n = max(0, min(n, len(sources)))
	urls := make([]string, 0, n)
	for _, source := range sources[:n] {
		urls = append(urls, source.URL)
	}
	return urls
}
