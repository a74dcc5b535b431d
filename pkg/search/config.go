package search

import (
	"strings"
	"time"
)

const (
	ProviderSerper     = "serper"
	ProviderBrave      = "brave"
	ProviderExa        = "exa"
	DefaultSearchCount = 6
	MaxSearchCount     = 20
	DefaultTimeoutSecs = 10
)

// Config controls search provider selection and credentials.
type Config struct {
	Provider string `yaml:"provider"`

	Serper SerperConfig `yaml:"serper"`
	Brave  BraveConfig  `yaml:"brave"`
	Exa    ExaConfig    `yaml:"exa"`
}

type SerperConfig struct {
	Enabled        *bool  `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSecs    int    `yaml:"timeout_seconds"`
	DefaultCountry string `yaml:"default_country"`
}

type BraveConfig struct {
	Enabled        *bool  `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSecs    int    `yaml:"timeout_seconds"`
	DefaultCountry string `yaml:"default_country"`
}

type ExaConfig struct {
	Enabled     *bool  `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Type        string `yaml:"type"`
	TimeoutSecs int    `yaml:"timeout_seconds"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderSerper
	}
	c.Serper = c.Serper.withDefaults()
	c.Brave = c.Brave.withDefaults()
	c.Exa = c.Exa.withDefaults()
	return c
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ProviderBrave:
		return c.Brave.APIKey
	case ProviderExa:
		return c.Exa.APIKey
	default:
		return c.Serper.APIKey
	}
}

func (c SerperConfig) withDefaults() SerperConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://google.serper.dev"
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	return c
}

func (c BraveConfig) withDefaults() BraveConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.search.brave.com/res/v1"
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	return c
}

func (c ExaConfig) withDefaults() ExaConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.exa.ai"
	}
	if c.Type == "" {
		c.Type = "auto"
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	return c
}

func isEnabled(flag *bool, fallback bool) bool {
	if flag == nil {
		return fallback
	}
	return *flag
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
