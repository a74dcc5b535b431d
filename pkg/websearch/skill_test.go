package websearch

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/beeper/ai-websearch/pkg/fetch"
	"github.com/beeper/ai-websearch/pkg/rewrite"
	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

type fixedRewriter struct {
	plan rewrite.Plan
}

func (f fixedRewriter) Rewrite(context.Context, rewrite.Input) rewrite.Plan {
	return f.plan
}

type stubSearcher struct {
	results map[string][]search.Result
	errs    map[string]error

	mu       sync.Mutex
	requests []search.Request
}

func (s *stubSearcher) Name() string { return "stub" }

func (s *stubSearcher) Search(_ context.Context, req search.Request) (*search.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if err := s.errs[req.Query]; err != nil {
		return nil, err
	}
	return &search.Response{Query: req.Query, Provider: "stub", Results: s.results[req.Query]}, nil
}

type stubFetcher struct {
	failing       map[string]bool
	urls          []string
	maxConcurrent int
	opts          fetch.Options
}

func (f *stubFetcher) FetchMany(_ context.Context, urls []string, maxConcurrent int, opts fetch.Options) []fetch.Page {
	f.urls = urls
	f.maxConcurrent = maxConcurrent
	f.opts = opts
	pages := make([]fetch.Page, len(urls))
	for i, u := range urls {
		if f.failing[u] {
			pages[i] = fetch.Page{URL: u, Error: "HTTP 500"}
			continue
		}
		pages[i] = fetch.Page{URL: u, Title: "page " + u, Body: "body of " + u, Length: 8 + len(u), Succeeded: true}
	}
	return pages
}

func result(url, title string, rank int) search.Result {
	return search.Result{URL: url, Title: title, Snippet: "snippet " + title, Rank: rank}
}

func twoQueryPlan() rewrite.Plan {
	return rewrite.Plan{
		Queries:  []string{"q1", "q2"},
		Language: "zh-cn",
		Recency:  search.RecencyWeek,
		Type:     search.TypeNews,
		Strategy: rewrite.StrategyRules,
	}
}

func TestRunDeduplicatesAcrossQueries(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]search.Result{
		"q1": {result("https://a.com", "A first", 1), result("https://b.com", "B", 2)},
		"q2": {result("https://a.com", "A second", 1), result("https://c.com", "C", 2)},
	}}
	fetcher := &stubFetcher{}
	skill := NewWithComponents(fixedRewriter{twoQueryPlan()}, searcher, fetcher, RequestDefaults{}, zerolog.Nop())

	bundle, err := skill.Run(context.Background(), Query{Text: "特斯拉最新裁员新闻"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var urls []string
	for _, source := range bundle.Sources {
		urls = append(urls, source.URL)
	}
	if !reflect.DeepEqual(urls, []string{"https://a.com", "https://b.com", "https://c.com"}) {
		t.Fatalf("unexpected merged urls %v", urls)
	}
	if bundle.Sources[0].Title != "A first" {
		t.Fatalf("first occurrence should win, got %q", bundle.Sources[0].Title)
	}
	if bundle.Sources[2].Rank != 2 {
		t.Fatalf("ranks should not be renumbered, got %d", bundle.Sources[2].Rank)
	}
	if !reflect.DeepEqual(bundle.Queries, []string{"q1", "q2"}) {
		t.Fatalf("unexpected rewritten queries %v", bundle.Queries)
	}

	if len(searcher.requests) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(searcher.requests))
	}
	for _, req := range searcher.requests {
		if req.Count != DefaultResultsPerQuery || req.Type != search.TypeNews || req.Recency != search.RecencyWeek || req.Language != "zh-cn" {
			t.Fatalf("search request does not follow the plan: %+v", req)
		}
	}
	if searcher.requests[0].Query != "q1" || searcher.requests[1].Query != "q2" {
		t.Fatalf("searches ran out of order")
	}

	if fetcher.maxConcurrent != DefaultMaxConcurrent || fetcher.opts.MaxLength != DefaultMaxContentLength {
		t.Fatalf("unexpected fetch settings %d %+v", fetcher.maxConcurrent, fetcher.opts)
	}
}

func TestRunFetchesTopN(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]search.Result{
		"only": {
			result("https://1.com", "1", 1),
			result("https://2.com", "2", 2),
			result("https://3.com", "3", 3),
			result("https://4.com", "4", 4),
			result("https://5.com", "5", 5),
		},
	}}
	fetcher := &stubFetcher{}
	plan := rewrite.Plan{Queries: []string{"only"}, Language: "en", Type: search.TypeSearch}
	skill := NewWithComponents(fixedRewriter{plan}, searcher, fetcher, RequestDefaults{}, zerolog.Nop())

	bundle, err := skill.Run(context.Background(), Query{Text: "five results", FetchTopN: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fetcher.urls, []string{"https://1.com", "https://2.com"}) {
		t.Fatalf("unexpected fetched urls %v", fetcher.urls)
	}
	if len(bundle.Pages) != 2 || len(bundle.Sources) != 5 {
		t.Fatalf("unexpected bundle sizes: pages=%d sources=%d", len(bundle.Pages), len(bundle.Sources))
	}
	for i, page := range bundle.Pages {
		if page.URL != bundle.Sources[i].URL {
			t.Fatalf("page %d is not aligned with its source", i)
		}
	}
	if stats := bundle.Stats(); stats != (Stats{Sources: 5, Fetched: 2, Succeeded: 2}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestRunSearchErrorPolicy(t *testing.T) {
	boom := &httputil.StatusError{StatusCode: 502, Body: "bad gateway"}
	newSearcher := func() *stubSearcher {
		return &stubSearcher{
			results: map[string][]search.Result{"q2": {result("https://ok.com", "ok", 1)}},
			errs:    map[string]error{"q1": boom},
		}
	}

	t.Run("abort", func(t *testing.T) {
		skill := NewWithComponents(fixedRewriter{twoQueryPlan()}, newSearcher(), &stubFetcher{}, RequestDefaults{}, zerolog.Nop())
		_, err := skill.Run(context.Background(), Query{Text: "x"})
		var searchErr *SearchError
		if !errors.As(err, &searchErr) || searchErr.Query != "q1" {
			t.Fatalf("expected SearchError for q1, got %v", err)
		}
		var statusErr *httputil.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != 502 {
			t.Fatalf("expected wrapped status error, got %v", err)
		}
	})

	t.Run("skip", func(t *testing.T) {
		skill := NewWithComponents(fixedRewriter{twoQueryPlan()}, newSearcher(), &stubFetcher{}, RequestDefaults{OnSearchError: OnSearchErrorSkip}, zerolog.Nop())
		bundle, err := skill.Run(context.Background(), Query{Text: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bundle.Sources) != 1 || bundle.Sources[0].URL != "https://ok.com" {
			t.Fatalf("unexpected sources %+v", bundle.Sources)
		}
		if len(bundle.SearchErrors) != 1 || bundle.SearchErrors[0].Query != "q1" {
			t.Fatalf("expected recorded failure, got %+v", bundle.SearchErrors)
		}
	})

	t.Run("skip all failed", func(t *testing.T) {
		searcher := &stubSearcher{errs: map[string]error{"q1": boom, "q2": boom}}
		skill := NewWithComponents(fixedRewriter{twoQueryPlan()}, searcher, &stubFetcher{}, RequestDefaults{OnSearchError: OnSearchErrorSkip}, zerolog.Nop())
		if _, err := skill.Run(context.Background(), Query{Text: "x"}); err == nil {
			t.Fatalf("expected error when every search fails")
		}
	})
}

func TestRunEmptyQuery(t *testing.T) {
	skill := NewWithComponents(rewrite.Rules{}, &stubSearcher{}, &stubFetcher{}, RequestDefaults{}, zerolog.Nop())
	if _, err := skill.Run(context.Background(), Query{Text: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestRunWithRuleRewriter(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]search.Result{
		"北京今天天气怎么样": {result("https://weather.com", "天气", 1)},
	}}
	fetcher := &stubFetcher{failing: map[string]bool{"https://weather.com": true}}
	skill := NewWithComponents(rewrite.Rules{}, searcher, fetcher, RequestDefaults{}, zerolog.Nop())

	bundle, err := skill.Run(context.Background(), Query{Text: "北京今天天气怎么样"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Plan.Recency != search.RecencyDay || searcher.requests[0].Recency != search.RecencyDay {
		t.Fatalf("expected day recency, plan %+v", bundle.Plan)
	}
	if len(bundle.Citations()) != 0 {
		t.Fatalf("expected no citations")
	}
}

func TestMergeSources(t *testing.T) {
	a := result("https://a.com", "A", 1)
	dup := result("https://a.com", "A again", 3)
	b := result("https://b.com", "B", 2)
	merged := MergeSources([]search.Result{a, b, dup}, []search.Result{dup, {URL: ""}})
	if !reflect.DeepEqual(merged, []search.Result{a, b}) {
		t.Fatalf("unexpected merge %+v", merged)
	}
}

func TestTopURLs(t *testing.T) {
	sources := []search.Result{result("https://a.com", "A", 1)}
	if got := TopURLs(sources, 4); len(got) != 1 {
		t.Fatalf("unexpected urls %v", got)
	}
	if got := TopURLs(sources, -1); len(got) != 0 {
		t.Fatalf("unexpected urls %v", got)
	}
}
