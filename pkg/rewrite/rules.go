package rewrite

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/beeper/ai-websearch/pkg/search"
)

const (
	cjkThreshold     = 0.3
	simplifyMinRunes = 15
)

var (
	dayKeywords      = []string{"今天", "今日", "刚刚", "today", "just now"}
	weekKeywords     = []string{"最新", "昨天", "本周", "新闻", "latest", "yesterday", "this week", "news", "breaking"}
	recentlyPrefixes = []string{"最近", "近期", "recently", "lately"}
	newsKeywords     = []string{"新闻", "news", "最新消息", "事件"}
	fillerPrefixes   = []string{
		"请问", "帮我查一下", "帮我查", "帮我搜一下", "帮我搜", "帮我",
		"我想知道", "可以告诉我", "你能帮我", "能不能帮我",
	}
	localityKeywords = []string{"附近", "周围", "哪里", "推荐", "餐厅", "酒店", "near", "nearby", "restaurant", "hotel"}
)

// Rules is the offline strategy. The same input always yields the same plan.
type Rules struct{}

func (Rules) Rewrite(_ context.Context, in Input) Plan {
	return RewriteWithRules(in)
}

// RewriteWithRules applies the keyword heuristics to in. A query that is
// only whitespace is kept as given rather than emptied.
func RewriteWithRules(in Input) Plan {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		query = in.Query
	}
	lower := strings.ToLower(query)

	plan := Plan{
		Language: DetectLanguage(query),
		Recency:  detectRecency(lower),
		Type:     detectType(lower),
		Strategy: StrategyRules,
	}

	queries := []string{query}
	if utf8.RuneCountInString(query) > simplifyMinRunes {
		if simplified := stripFiller(query); simplified != "" && simplified != query {
			queries = append([]string{simplified}, queries...)
		}
	}
	if location := strings.TrimSpace(in.Location); location != "" && containsAny(lower, localityKeywords) {
		queries = append(queries, query+" "+location)
	}
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}
	plan.Queries = queries
	return plan
}

// DetectLanguage reports "zh-cn" when more than 30% of the runes are CJK ideographs.
func DetectLanguage(query string) string {
	total, cjk := 0, 0
	for _, r := range query {
		total++
		if r >= '\u4e00' && r <= '\u9fff' {
			cjk++
		}
	}
	if total > 0 && float64(cjk) > float64(total)*cjkThreshold {
		return "zh-cn"
	}
	return "en"
}

func detectRecency(lower string) search.Recency {
	recency := search.RecencyNone
	switch {
	case containsAny(lower, dayKeywords):
		recency = search.RecencyDay
	case containsAny(lower, weekKeywords):
		recency = search.RecencyWeek
	}
	for _, prefix := range recentlyPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return search.RecencyMonth
		}
	}
	return recency
}

func detectType(lower string) search.Type {
	if containsAny(lower, newsKeywords) {
		return search.TypeNews
	}
	return search.TypeSearch
}

func stripFiller(query string) string {
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(query, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(query, prefix))
		}
	}
	return query
}

func containsAny(value string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(value, kw) {
			return true
		}
	}
	return false
}
