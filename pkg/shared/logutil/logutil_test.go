package logutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"go.mau.fi/zeroconfig"
)

func TestFromContextPrefersContextLogger(t *testing.T) {
	var ctxBuf, fallbackBuf bytes.Buffer
	ctxLog := zerolog.New(&ctxBuf)
	fallback := zerolog.New(&fallbackBuf)

	ctx := ctxLog.WithContext(context.Background())
	log := FromContext(ctx, fallback)
	log.Info().Msg("hello")

	if ctxBuf.Len() == 0 {
		t.Fatalf("expected context logger to receive the event")
	}
	if fallbackBuf.Len() != 0 {
		t.Fatalf("fallback logger should not be used")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	var buf bytes.Buffer
	fallback := zerolog.New(&buf)

	log := FromContext(context.Background(), fallback)
	log.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Fatalf("expected fallback logger to be used")
	}
}

func TestWithDefaults(t *testing.T) {
	cfg := WithDefaults(zeroconfig.Config{})
	if len(cfg.Writers) != 1 || cfg.Writers[0].Type != zeroconfig.WriterTypeStderr {
		t.Fatalf("expected a single stderr writer, got %#v", cfg.Writers)
	}
	if cfg.MinLevel == nil || *cfg.MinLevel != zerolog.InfoLevel {
		t.Fatalf("expected info level default")
	}
}
