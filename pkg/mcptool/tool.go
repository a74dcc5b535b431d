// Package mcptool exposes the web search pipeline as an MCP tool.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/beeper/ai-websearch/pkg/tokens"
	"github.com/beeper/ai-websearch/pkg/websearch"
)

const (
	ToolName        = "web_search"
	toolDescription = "Search the web for up-to-date information. The question is rewritten into search queries, " +
		"the top results are fetched and cleaned, and the page contents are returned with numbered sources to cite as [n]."
	maxFetchTopN = 10
)

// Runner is satisfied by *websearch.Skill.
type Runner interface {
	Run(ctx context.Context, q websearch.Query) (*websearch.Bundle, error)
}

type Input struct {
	Query     string `json:"query" jsonschema:"the question or topic to search for"`
	Location  string `json:"location,omitempty" jsonschema:"optional user location used for local questions"`
	Language  string `json:"language,omitempty" jsonschema:"preferred result language such as zh-cn or en"`
	FetchTopN int    `json:"fetch_top_n,omitempty" jsonschema:"how many result pages to fetch (1-10)"`
}

type Output struct {
	Context         string               `json:"context"`
	Citations       []websearch.Citation `json:"citations"`
	Queries         []string             `json:"rewritten_queries"`
	Stats           websearch.Stats      `json:"stats"`
	EstimatedTokens int                  `json:"estimated_tokens"`
}

// Options tune how bundles are rendered for the tool response.
type Options struct {
	MaxCharsPerSource int
	// TokenModel selects the tokenizer used for EstimatedTokens. Empty means
	// the character-based approximation.
	TokenModel string
}

// Tool returns the MCP definition of web_search.
func Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
		Annotations: &mcp.ToolAnnotations{Title: "Web Search"},
	}
}

// Handler runs the pipeline for one tool call.
func Handler(runner Runner, opts Options) mcp.ToolHandlerFor[Input, Output] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in Input) (*mcp.CallToolResult, Output, error) {
		query := strings.TrimSpace(in.Query)
		if query == "" {
			return nil, Output{}, errors.New("query is required")
		}
		bundle, err := runner.Run(ctx, websearch.Query{
			Text:      query,
			Location:  in.Location,
			Language:  in.Language,
			FetchTopN: min(max(in.FetchTopN, 0), maxFetchTopN),
		})
		if err != nil {
			return nil, Output{}, errors.New(websearch.UserMessage(err))
		}

		out := Output{
			Context:   bundle.RenderContext(opts.MaxCharsPerSource),
			Citations: bundle.Citations(),
			Queries:   bundle.Queries,
			Stats:     bundle.Stats(),
		}
		if out.Citations == nil {
			out.Citations = []websearch.Citation{}
		}
		if out.Queries == nil {
			out.Queries = []string{}
		}
		if opts.TokenModel != "" {
			out.EstimatedTokens, _ = tokens.Estimate(out.Context, opts.TokenModel)
		} else {
			out.EstimatedTokens = tokens.Approximate(out.Context)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: formatText(out)}},
		}, out, nil
	}
}

// NewServer builds an MCP server with web_search registered.
func NewServer(runner Runner, opts Options, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "ai-websearch", Version: version}, nil)
	mcp.AddTool(server, Tool(), Handler(runner, opts))
	return server
}

func formatText(out Output) string {
	if len(out.Citations) == 0 {
		return out.Context
	}
	var sb strings.Builder
	sb.WriteString(out.Context)
	sb.WriteString("\n## References\n")
	for _, c := range out.Citations {
		fmt.Fprintf(&sb, "[%d] %s - %s\n", c.Index, c.Title, c.URL)
	}
	return sb.String()
}
