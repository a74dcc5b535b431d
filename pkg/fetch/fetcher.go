package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

var ErrUnknownProvider = errors.New("unknown fetch provider")

// Fetcher turns provider output into cleaned, bounded pages.
type Fetcher struct {
	provider Provider
	log      zerolog.Logger
}

// New builds a Fetcher for the provider named in cfg.
func New(cfg *Config, log zerolog.Logger) (*Fetcher, error) {
	cfg = cfg.WithDefaults()
	var provider Provider
	switch cfg.Provider {
	case ProviderJina:
		provider = newJinaProvider(cfg)
	case ProviderDirect:
		provider = newDirectProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return NewWithProvider(provider, log), nil
}

// NewWithProvider wraps an already constructed provider.
func NewWithProvider(provider Provider, log zerolog.Logger) *Fetcher {
	return &Fetcher{provider: provider, log: log.With().Str("component", "fetch").Logger()}
}

// ProviderName reports the backend used for fetching.
func (f *Fetcher) ProviderName() string {
	return f.provider.Name()
}

// FetchOne fetches and cleans a single URL. It never fails: errors are
// reported on the returned page.
func (f *Fetcher) FetchOne(ctx context.Context, url string, opts Options) Page {
	opts = opts.withDefaults()
	log := logutil.FromContext(ctx, f.log)
	start := time.Now()

	resp, err := f.provider.Fetch(ctx, Request{URL: url, Timeout: opts.Timeout})
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		msg := describeError(err, opts.Timeout)
		log.Debug().Str("url", url).Str("error", msg).Msg("Fetch failed")
		return Page{URL: url, Error: msg}
	}

	cleaned := Clean(resp.Text)
	body := Truncate(cleaned, opts.MaxLength)
	log.Debug().
		Str("url", url).
		Int("status", resp.Status).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Fetched page")
	return Page{
		URL:       url,
		Title:     ExtractTitle(cleaned),
		Body:      body,
		Length:    stringutil.RuneLen(body),
		Succeeded: true,
	}
}

// FetchMany fetches urls with at most maxConcurrent requests in flight.
// The result is aligned with urls.
func (f *Fetcher) FetchMany(ctx context.Context, urls []string, maxConcurrent int, opts Options) []Page {
	pages := make([]Page, len(urls))
	if len(urls) == 0 {
		return pages
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	opts = opts.withDefaults()

	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			pages[i] = f.FetchOne(ctx, u, opts)
			return nil
		})
	}
	_ = g.Wait()
	return pages
}

func describeError(err error, timeout time.Duration) string {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP %d", statusErr.StatusCode)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("timeout (%s)", timeout)
	}
	return err.Error()
}
