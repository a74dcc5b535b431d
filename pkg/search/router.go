package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey   = errors.New("search provider is disabled or has no api key")
	ErrUnknownProvider = errors.New("unknown search provider")
	ErrEmptyQuery      = errors.New("missing query")
)

// New returns the provider selected by cfg.Provider, wrapped so every request
// is validated and normalized before it reaches the backend.
func New(cfg *Config) (Provider, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Provider {
	case ProviderSerper, ProviderBrave, ProviderExa:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	registry := NewRegistry()
	registerProviders(registry, cfg)
	provider := registry.Get(cfg.Provider)
	if provider == nil {
		if configured := registry.Names(); len(configured) > 0 {
			return nil, fmt.Errorf("%w: %s (configured: %s)", ErrMissingAPIKey, cfg.Provider, strings.Join(configured, ", "))
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
	}
	return Normalize(provider), nil
}

// Normalize wraps p so requests get a query check and a clamped count.
func Normalize(p Provider) Provider {
	if _, ok := p.(*normalizedProvider); ok {
		return p
	}
	return &normalizedProvider{inner: p}
}

type normalizedProvider struct {
	inner Provider
}

func (n *normalizedProvider) Name() string {
	return n.inner.Name()
}

func (n *normalizedProvider) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	req = normalizeRequest(req)
	resp, err := n.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("provider %s returned empty response", n.inner.Name())
	}
	if resp.Provider == "" {
		resp.Provider = n.inner.Name()
	}
	if resp.Query == "" {
		resp.Query = req.Query
	}
	return resp, nil
}

func normalizeRequest(req Request) Request {
	req.Query = strings.TrimSpace(req.Query)
	if req.Count <= 0 {
		req.Count = DefaultSearchCount
	}
	if req.Count > MaxSearchCount {
		req.Count = MaxSearchCount
	}
	if req.Type == "" {
		req.Type = TypeSearch
	}
	return req
}

func registerProviders(registry *Registry, cfg *Config) {
	if registry == nil || cfg == nil {
		return
	}
	registry.Register(newSerperProvider(cfg))
	registry.Register(newBraveProvider(cfg))
	registry.Register(newExaProvider(cfg))
}
