package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPostJSONReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing json content type")
		}
		if r.Header.Get("X-Api-Key") != "k" {
			t.Errorf("missing custom header")
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer server.Close()

	_, status, err := PostJSON(context.Background(), server.URL, map[string]string{"X-API-KEY": "k"}, map[string]any{"q": "a"}, time.Second)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status code %d", statusErr.StatusCode)
	}
	if len(statusErr.Body) != maxErrorBody {
		t.Fatalf("expected body trimmed to %d, got %d", maxErrorBody, len(statusErr.Body))
	}
	if !strings.HasPrefix(err.Error(), "http 403: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGetJSONReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	data, status, err := GetJSON(context.Background(), server.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK || string(data) != `{"ok":true}` {
		t.Fatalf("unexpected response %d %q", status, data)
	}
}

func TestMergeHeadersSkipsEmptyValues(t *testing.T) {
	got := MergeHeaders(map[string]string{"Accept": "text/plain"}, map[string]string{"Authorization": ""})
	if len(got) != 1 || got["Accept"] != "text/plain" {
		t.Fatalf("unexpected headers %#v", got)
	}
	got = MergeHeaders(nil, BearerHeader("tok"))
	if got["Authorization"] != "Bearer tok" {
		t.Fatalf("unexpected headers %#v", got)
	}
	if BearerHeader("") != nil {
		t.Fatalf("expected nil header map for empty token")
	}
}
