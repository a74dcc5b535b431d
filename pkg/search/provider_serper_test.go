package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

func TestSerperProviderSearchBuildsPayload(t *testing.T) {
	var gotBody map[string]any
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":" First ","link":"https://a.com/1","snippet":"one","position":1},
			{"title":"Second","link":"https://b.com/2","snippet":"two","position":2}
		]}`))
	}))
	defer server.Close()

	provider := &serperProvider{cfg: SerperConfig{BaseURL: server.URL, APIKey: "test-key", TimeoutSecs: 5}}
	resp, err := provider.Search(context.Background(), Request{
		Query:    "北京 天气",
		Count:    6,
		Type:     TypeSearch,
		Language: "zh-cn",
		Recency:  RecencyDay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/search" {
		t.Fatalf("expected /search, got %q", gotPath)
	}
	if gotBody["q"] != "北京 天气" || int(gotBody["num"].(float64)) != 6 {
		t.Fatalf("unexpected payload %#v", gotBody)
	}
	if gotBody["hl"] != "zh-cn" || gotBody["tbs"] != "qdr:d" {
		t.Fatalf("expected hl and tbs in payload, got %#v", gotBody)
	}
	if _, ok := gotBody["gl"]; ok {
		t.Fatalf("gl must be omitted when no country is set")
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	first := resp.Results[0]
	if first.Title != "First" || first.URL != "https://a.com/1" || first.Rank != 1 || first.SiteName != "a.com" {
		t.Fatalf("unexpected first result %#v", first)
	}
	if resp.Results[1].Rank != 2 {
		t.Fatalf("expected rank 2, got %d", resp.Results[1].Rank)
	}
}

func TestSerperProviderNewsUsesNewsEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"news":[{"title":"Layoffs","link":"https://news.example/x","snippet":"s","source":"Example News","date":"2 hours ago"}]}`))
	}))
	defer server.Close()

	provider := &serperProvider{cfg: SerperConfig{BaseURL: server.URL, APIKey: "k", TimeoutSecs: 5}}
	resp, err := provider.Search(context.Background(), Request{Query: "tesla", Count: 3, Type: TypeNews})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/news" {
		t.Fatalf("expected /news, got %q", gotPath)
	}
	if _, ok := gotBody["tbs"]; ok {
		t.Fatalf("tbs must be omitted without recency")
	}
	if len(resp.Results) != 1 || resp.Results[0].SiteName != "Example News" || resp.Results[0].Published != "2 hours ago" {
		t.Fatalf("unexpected news results %#v", resp.Results)
	}
}

func TestSerperProviderPropagatesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := &serperProvider{cfg: SerperConfig{BaseURL: server.URL, APIKey: "k", TimeoutSecs: 5}}
	_, err := provider.Search(context.Background(), Request{Query: "x", Count: 1})
	var statusErr *httputil.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
}
