package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/beeper/ai-websearch/pkg/rewrite"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
	"github.com/beeper/ai-websearch/pkg/tokens"
	"github.com/beeper/ai-websearch/pkg/websearch"
)

func main() {
	configPath := flag.String("config", "", "Path to a yaml config file")
	envFile := flag.String("env-file", ".env", "Dotenv file to load before reading the environment")
	location := flag.String("location", "", "User location for local questions")
	language := flag.String("lang", "", "Preferred language (default from config, zh-cn)")
	perQuery := flag.Int("n", 0, "Search results per rewritten query")
	topN := flag.Int("top", 0, "Number of result pages to fetch")
	maxLen := flag.Int("max-len", 0, "Maximum characters kept per fetched page")
	perSource := flag.Int("per-source", 0, "Maximum characters per source in the rendered context")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline for the request")
	asJSON := flag.Bool("json", false, "Print the whole bundle as JSON")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <question>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	bundle, err := skill.Run(ctx, websearch.Query{
		Text:             query,
		Location:         *location,
		Language:         *language,
		ResultsPerQuery:  *perQuery,
		FetchTopN:        *topN,
		MaxContentLength: *maxLen,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", websearch.UserMessage(err))
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err = enc.Encode(bundle); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding bundle: %v\n", err)
			os.Exit(1)
		}
		return
	}

	maxChars := *perSource
	if maxChars <= 0 {
		maxChars = cfg.Defaults.MaxCharsPerSource
	}
	rendered := bundle.RenderContext(maxChars)
	fmt.Println(rendered)

	if citations := bundle.Citations(); len(citations) > 0 {
		fmt.Println("References:")
		for _, c := range citations {
			fmt.Printf("  [%d] %s - %s\n", c.Index, c.Title, c.URL)
		}
	}
	stats := bundle.Stats()
	estimate, exact := tokens.Estimate(rendered, cfg.Rewrite.Model)
	approx := "~"
	if exact {
		approx = ""
	}
	fmt.Printf("\nQueries: %v (%s)\n", bundle.Queries, planSummary(bundle.Plan))
	fmt.Printf("Sources: %d, fetched: %d/%d, context: %s%d tokens\n", stats.Sources, stats.Succeeded, stats.Fetched, approx, estimate)
	fmt.Printf("Time: %dms (rewrite %dms + search %dms + fetch %dms)\n",
		bundle.Timings.TotalMs(), bundle.Timings.RewriteMs, bundle.Timings.SearchMs, bundle.Timings.FetchMs)
	for _, failure := range bundle.SearchErrors {
		fmt.Printf("Skipped query %q: %s\n", failure.Query, failure.Error)
	}
}

func planSummary(plan rewrite.Plan) string {
	recency := string(plan.Recency)
	if recency == "" {
		recency = "any time"
	}
	return fmt.Sprintf("%s, %s, %s, %s", plan.Strategy, plan.Language, plan.Type, recency)
}
