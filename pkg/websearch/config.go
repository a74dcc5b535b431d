package websearch

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"

	"github.com/beeper/ai-websearch/pkg/fetch"
	"github.com/beeper/ai-websearch/pkg/rewrite"
	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
)

// SearchErrorPolicy decides what a failed search for one rewritten query does to the request.
type SearchErrorPolicy string

const (
	// OnSearchErrorAbort fails the whole request.
	OnSearchErrorAbort SearchErrorPolicy = "abort"
	// OnSearchErrorSkip drops the failing query and keeps going.
	OnSearchErrorSkip SearchErrorPolicy = "skip"
)

const (
	DefaultResultsPerQuery   = 6
	DefaultFetchTopN         = 4
	DefaultMaxContentLength  = 6000
	DefaultMaxConcurrent     = 4
	DefaultFetchTimeoutSecs  = 15
	DefaultMaxCharsPerSource = 1500 * 4
)

// Config is the complete configuration of the pipeline.
type Config struct {
	Search   search.Config     `yaml:"search"`
	Fetch    fetch.Config      `yaml:"fetch"`
	Rewrite  rewrite.Config    `yaml:"rewrite"`
	Defaults RequestDefaults   `yaml:"defaults"`
	Logging  zeroconfig.Config `yaml:"logging"`
}

// RequestDefaults fill the fields a Query leaves at zero.
type RequestDefaults struct {
	Language          string            `yaml:"language"`
	Country           string            `yaml:"country"`
	ResultsPerQuery   int               `yaml:"results_per_query"`
	FetchTopN         int               `yaml:"fetch_top_n"`
	MaxContentLength  int               `yaml:"max_content_length"`
	MaxConcurrent     int               `yaml:"max_concurrent"`
	FetchTimeoutSecs  int               `yaml:"fetch_timeout_seconds"`
	MaxCharsPerSource int               `yaml:"max_chars_per_source"`
	OnSearchError     SearchErrorPolicy `yaml:"on_search_error"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.Search.WithDefaults()
	c.Fetch.WithDefaults()
	c.Rewrite.WithDefaults()
	c.Defaults = c.Defaults.withDefaults()
	c.Logging = logutil.WithDefaults(c.Logging)
	return c
}

func (d RequestDefaults) withDefaults() RequestDefaults {
	if d.Language == "" {
		d.Language = rewrite.DefaultLanguage
	}
	if d.ResultsPerQuery <= 0 {
		d.ResultsPerQuery = DefaultResultsPerQuery
	}
	if d.FetchTopN <= 0 {
		d.FetchTopN = DefaultFetchTopN
	}
	if d.MaxContentLength <= 0 {
		d.MaxContentLength = DefaultMaxContentLength
	}
	if d.MaxConcurrent <= 0 {
		d.MaxConcurrent = DefaultMaxConcurrent
	}
	if d.FetchTimeoutSecs <= 0 {
		d.FetchTimeoutSecs = DefaultFetchTimeoutSecs
	}
	if d.MaxCharsPerSource <= 0 {
		d.MaxCharsPerSource = DefaultMaxCharsPerSource
	}
	d.OnSearchError = SearchErrorPolicy(strings.ToLower(strings.TrimSpace(string(d.OnSearchError))))
	if d.OnSearchError == "" {
		d.OnSearchError = OnSearchErrorAbort
	}
	return d
}

func (d RequestDefaults) fetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSecs) * time.Second
}

// LoadFile reads a yaml config. Environment defaults are not applied.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnvDefaults fills settings the file left empty from the environment.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	search.ApplyEnvDefaults(&cfg.Search)
	fetch.ApplyEnvDefaults(&cfg.Fetch)
	rewrite.ApplyEnvDefaults(&cfg.Rewrite)
	if cfg.Defaults.OnSearchError == "" {
		cfg.Defaults.OnSearchError = SearchErrorPolicy(strings.TrimSpace(os.Getenv("WEBSEARCH_ON_SEARCH_ERROR")))
	}
	return cfg.WithDefaults()
}

// Validate reports the first setting that would make New fail.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case search.ProviderSerper, search.ProviderBrave, search.ProviderExa:
	default:
		return &ConfigError{
			Field: "search.provider",
			Env:   "SEARCH_PROVIDER",
			Err:   fmt.Errorf("%w: %q", ErrUnknownSearchProvider, c.Search.Provider),
		}
	}
	if c.Search.APIKey() == "" {
		return &ConfigError{
			Field: "search." + c.Search.Provider + ".api_key",
			Env:   searchKeyEnv(c.Search.Provider),
			Err:   ErrMissingSearchKey,
		}
	}
	switch c.Fetch.Provider {
	case fetch.ProviderJina, fetch.ProviderDirect:
	default:
		return &ConfigError{
			Field: "fetch.provider",
			Env:   "FETCH_PROVIDER",
			Err:   fmt.Errorf("%w: %q", ErrUnknownFetchProvider, c.Fetch.Provider),
		}
	}
	switch c.Defaults.OnSearchError {
	case OnSearchErrorAbort, OnSearchErrorSkip:
	default:
		return &ConfigError{
			Field: "defaults.on_search_error",
			Env:   "WEBSEARCH_ON_SEARCH_ERROR",
			Err:   fmt.Errorf("%w: %q", ErrInvalidPolicy, c.Defaults.OnSearchError),
		}
	}
	return nil
}

func searchKeyEnv(provider string) string {
	switch provider {
	case search.ProviderBrave:
		return "BRAVE_API_KEY"
	case search.ProviderExa:
		return "EXA_API_KEY"
	default:
		return "SERPER_API_KEY"
	}
}

// LoadConfig reads path when it is set and then applies environment defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	return ApplyEnvDefaults(cfg), nil
}
