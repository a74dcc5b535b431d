package fetch

import (
	"strings"
	"time"
)

const (
	ProviderJina         = "jina"
	ProviderDirect       = "direct"
	DefaultTimeout       = 15 * time.Second
	DefaultMaxLength     = 8000
	DefaultMaxConcurrent = 5
	DefaultMaxBytes      = 2 << 20
)

// Config controls fetch provider selection and credentials.
type Config struct {
	Provider string `yaml:"provider"`

	Jina   JinaConfig   `yaml:"jina"`
	Direct DirectConfig `yaml:"direct"`
}

type JinaConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type DirectConfig struct {
	UserAgent    string `yaml:"user_agent"`
	MaxBytes     int64  `yaml:"max_bytes"`
	MaxRedirects int    `yaml:"max_redirects"`
	// AllowPrivate lets the direct fetcher reach loopback and private ranges.
	AllowPrivate bool `yaml:"allow_private_networks"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderJina
	}
	c.Jina = c.Jina.withDefaults()
	c.Direct = c.Direct.withDefaults()
	return c
}

func (c JinaConfig) withDefaults() JinaConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://r.jina.ai"
	}
	return c
}

func (c DirectConfig) withDefaults() DirectConfig {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 3
	}
	return c
}
