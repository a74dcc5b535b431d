package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/beeper/ai-websearch/pkg/mcptool"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
	"github.com/beeper/ai-websearch/pkg/websearch"
)

// Filled at build time with the -X linker flag.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to a yaml config file")
	envFile := flag.String("env-file", ".env", "Dotenv file to load before reading the environment")
	tokenModel := flag.String("token-model", "", "Model whose tokenizer estimates context size (empty: approximate)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}
	cfg, err := websearch.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logutil.Setup(cfg.Logging, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}
	skill, err := websearch.New(cfg, *log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", websearch.UserMessage(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	server := mcptool.NewServer(skill, mcptool.Options{
		MaxCharsPerSource: cfg.Defaults.MaxCharsPerSource,
		TokenModel:        *tokenModel,
	}, Tag)
	log.Info().Str("version", Tag).Str("commit", Commit).Str("built", BuildTime).Msg("Serving web_search over stdio")
	if err = server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Err(err).Msg("MCP server stopped")
		os.Exit(1)
	}
}
