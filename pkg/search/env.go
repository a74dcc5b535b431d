package search

import (
	"os"
	"strings"

	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

// ConfigFromEnv builds a search config using environment variables.
func ConfigFromEnv() *Config {
	cfg := &Config{}

	if provider := strings.TrimSpace(os.Getenv("SEARCH_PROVIDER")); provider != "" {
		cfg.Provider = provider
	}
	cfg.Serper.APIKey = stringutil.EnvOr(cfg.Serper.APIKey, os.Getenv("SERPER_API_KEY"))
	cfg.Serper.BaseURL = stringutil.EnvOr(cfg.Serper.BaseURL, os.Getenv("SERPER_BASE_URL"))

	cfg.Brave.APIKey = stringutil.EnvOr(cfg.Brave.APIKey, os.Getenv("BRAVE_API_KEY"))
	cfg.Brave.BaseURL = stringutil.EnvOr(cfg.Brave.BaseURL, os.Getenv("BRAVE_BASE_URL"))

	cfg.Exa.APIKey = stringutil.EnvOr(cfg.Exa.APIKey, os.Getenv("EXA_API_KEY"))
	cfg.Exa.BaseURL = stringutil.EnvOr(cfg.Exa.BaseURL, os.Getenv("EXA_BASE_URL"))

	return cfg.WithDefaults()
}

// ApplyEnvDefaults fills empty config fields from environment variables.
func ApplyEnvDefaults(cfg *Config) *Config {
	if cfg == nil {
		return ConfigFromEnv()
	}
	providerSet := strings.TrimSpace(cfg.Provider) != ""
	envCfg := ConfigFromEnv()
	current := cfg

	if !providerSet {
		current.Provider = envCfg.Provider
	}
	current.Serper.APIKey = stringutil.FirstNonEmpty(current.Serper.APIKey, envCfg.Serper.APIKey)
	current.Serper.BaseURL = stringutil.FirstNonEmpty(current.Serper.BaseURL, envCfg.Serper.BaseURL)
	current.Brave.APIKey = stringutil.FirstNonEmpty(current.Brave.APIKey, envCfg.Brave.APIKey)
	current.Brave.BaseURL = stringutil.FirstNonEmpty(current.Brave.BaseURL, envCfg.Brave.BaseURL)
	current.Exa.APIKey = stringutil.FirstNonEmpty(current.Exa.APIKey, envCfg.Exa.APIKey)
	current.Exa.BaseURL = stringutil.FirstNonEmpty(current.Exa.BaseURL, envCfg.Exa.BaseURL)

	return current.WithDefaults()
}
