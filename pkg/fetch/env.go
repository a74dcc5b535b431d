package fetch

import (
	"os"
	"strings"

	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

// ConfigFromEnv builds a fetch config using environment variables.
func ConfigFromEnv() *Config {
	cfg := &Config{}
	if provider := strings.TrimSpace(os.Getenv("FETCH_PROVIDER")); provider != "" {
		cfg.Provider = provider
	}
	cfg.Jina.APIKey = stringutil.EnvOr(cfg.Jina.APIKey, os.Getenv("JINA_API_KEY"))
	cfg.Jina.BaseURL = stringutil.EnvOr(cfg.Jina.BaseURL, os.Getenv("JINA_BASE_URL"))
	return cfg.WithDefaults()
}

// ApplyEnvDefaults fills empty config fields from environment variables.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		return ConfigFromEnv()
	}
	envCfg := ConfigFromEnv()
	if strings.TrimSpace(cfg.Provider) == "" {
		cfg.Provider = envCfg.Provider
	}
	cfg.Jina.APIKey = stringutil.FirstNonEmpty(cfg.Jina.APIKey, envCfg.Jina.APIKey)
	cfg.Jina.BaseURL = stringutil.FirstNonEmpty(cfg.Jina.BaseURL, envCfg.Jina.BaseURL)
	return cfg.WithDefaults()
}
