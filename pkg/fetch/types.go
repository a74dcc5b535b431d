package fetch

import (
	"context"
	"time"
)

// Provider retrieves the raw text of a page for a given backend.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Request is a single fetch-by-URL call.
type Request struct {
	URL     string
	Timeout time.Duration
}

// Response is the raw, uncleaned text a provider returned.
type Response struct {
	URL         string
	FinalURL    string
	Status      int
	ContentType string
	Text        string
	Provider    string
	TookMs      int64
}

// Page is the cleaned result for one URL. Failed fetches keep an empty body
// and carry a human-readable Error.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Length    int    `json:"length"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// Options apply to every fetch in a batch.
type Options struct {
	Timeout   time.Duration
	MaxLength int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	return o
}
