// Package rewrite turns a conversational question into search-engine queries.
package rewrite

import (
	"context"

	"github.com/beeper/ai-websearch/pkg/search"
)

const (
	DefaultLanguage = "zh-cn"
	MaxQueries      = 3
)

// Strategy names the path that produced a plan.
type Strategy string

const (
	StrategyRules    Strategy = "rules"
	StrategyLLM      Strategy = "llm"
	StrategyFallback Strategy = "rules_fallback"
)

// Input is one rewrite request.
type Input struct {
	Query    string
	Location string
	// Language is the caller's preferred language, used as a hint in the LLM prompt.
	Language string
}

// Plan holds 1..3 search queries and the parameters shared by all of them.
type Plan struct {
	Queries  []string       `json:"search_queries"`
	Language string         `json:"language"`
	Recency  search.Recency `json:"time_filter,omitempty"`
	Type     search.Type    `json:"search_type"`
	Strategy Strategy       `json:"strategy"`
}

// Rewriter never fails; strategies that can fail fall back to the rules.
// in.Query must not be empty. Every returned query is non-empty for such input.
type Rewriter interface {
	Rewrite(ctx context.Context, in Input) Plan
}
