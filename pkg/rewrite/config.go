package rewrite

import (
	"os"
	"strings"
	"time"

	"go.mau.fi/util/ptr"

	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

const (
	DefaultBaseURL     = "https://open.bigmodel.cn/api/paas/v4/"
	DefaultModel       = "glm-4-flash"
	DefaultTimeoutSecs = 15
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 300
)

// Config selects the rewrite strategy. Without an API key only the rules are used.
type Config struct {
	Enabled     *bool    `yaml:"enabled"`
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	TimeoutSecs int      `yaml:"timeout_seconds"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = DefaultTimeoutSecs
	}
	if c.Temperature == nil || *c.Temperature < 0 {
		c.Temperature = ptr.Ptr(DefaultTemperature)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// UsesLLM reports whether New will pick the LLM strategy.
func (c *Config) UsesLLM() bool {
	if c == nil || c.APIKey == "" {
		return false
	}
	return c.Enabled == nil || *c.Enabled
}

func (c *Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ApplyEnvDefaults fills empty fields from GLM_API_KEY, GLM_MODEL and GLM_BASE_URL.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.APIKey = strings.TrimSpace(stringutil.FirstNonEmpty(cfg.APIKey, os.Getenv("GLM_API_KEY")))
	cfg.Model = strings.TrimSpace(stringutil.FirstNonEmpty(cfg.Model, os.Getenv("GLM_MODEL")))
	cfg.BaseURL = strings.TrimSpace(stringutil.FirstNonEmpty(cfg.BaseURL, os.Getenv("GLM_BASE_URL")))
	return cfg.WithDefaults()
}
