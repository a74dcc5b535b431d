package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExaProviderSearchMapsNewsAndRecency(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"t","url":"https://example.com","highlights":["h"]},{"title":"u","url":"https://example.org","text":"body text"}]}`))
	}))
	defer server.Close()

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	provider := &exaProvider{
		cfg: ExaConfig{BaseURL: server.URL, APIKey: "test-key", Type: "auto", TimeoutSecs: 5},
		now: func() time.Time { return fixed },
	}

	resp, err := provider.Search(context.Background(), Request{Query: "test", Count: 3, Type: TypeNews, Recency: RecencyWeek})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotBody["category"] != "news" {
		t.Fatalf("expected news category, got %#v", gotBody["category"])
	}
	if gotBody["startPublishedDate"] != "2025-03-03T12:00:00Z" {
		t.Fatalf("unexpected startPublishedDate %#v", gotBody["startPublishedDate"])
	}
	if int(gotBody["numResults"].(float64)) != 3 {
		t.Fatalf("expected numResults=3, got %#v", gotBody["numResults"])
	}
	if resp.Results[0].Snippet != "h" || resp.Results[1].Snippet != "body text" {
		t.Fatalf("unexpected snippets %#v", resp.Results)
	}
	if resp.Results[1].Rank != 2 {
		t.Fatalf("expected rank 2, got %d", resp.Results[1].Rank)
	}
}

func TestExaProviderOmitsDateWithoutRecency(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	provider := &exaProvider{cfg: ExaConfig{BaseURL: server.URL, APIKey: "k", TimeoutSecs: 5}, now: time.Now}
	resp, err := provider.Search(context.Background(), Request{Query: "q", Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotBody["startPublishedDate"]; ok {
		t.Fatalf("startPublishedDate must be omitted without recency")
	}
	if _, ok := gotBody["category"]; ok {
		t.Fatalf("category must be omitted for plain search")
	}
	if len(resp.Results) != 0 {
		t.Fatalf("expected no results")
	}
}
