// Package logutil holds the zerolog plumbing shared by the search pipeline.
package logutil

import (
	"context"

	"github.com/rs/zerolog"
	"go.mau.fi/util/ptr"
	"go.mau.fi/zeroconfig"
)

// FromContext returns the logger attached to ctx if it is enabled,
// otherwise the provided fallback.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if ctx != nil {
		if ctxLog := zerolog.Ctx(ctx); ctxLog != nil && ctxLog.GetLevel() != zerolog.Disabled {
			return *ctxLog
		}
	}
	return fallback
}

// WithDefaults fills in a stderr writer and info level when cfg leaves them unset.
func WithDefaults(cfg zeroconfig.Config) zeroconfig.Config {
	if len(cfg.Writers) == 0 {
		cfg.Writers = []zeroconfig.WriterConfig{{
			Type:   zeroconfig.WriterTypeStderr,
			Format: zeroconfig.LogFormatPrettyColored,
		}}
	}
	if cfg.MinLevel == nil {
		cfg.MinLevel = ptr.Ptr(zerolog.InfoLevel)
	}
	return cfg
}

// Setup compiles cfg (after defaults) into a logger.
// verbose forces the minimum level down to debug.
func Setup(cfg zeroconfig.Config, verbose bool) (*zerolog.Logger, error) {
	cfg = WithDefaults(cfg)
	if verbose {
		cfg.MinLevel = ptr.Ptr(zerolog.DebugLevel)
	}
	return cfg.Compile()
}
