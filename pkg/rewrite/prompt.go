package rewrite

import (
	"fmt"
	"strings"
)

const promptTemplate = `You turn a user's question into web search queries.

## Question
%s%s

## Instructions
1. Work out what the user actually wants and extract keywords a search engine can use directly.
2. Split multi-part or multi-step questions into 1-3 short, independent queries (1-6 words each).
3. Drop politeness, filler and repetition.
4. Local, everyday or current-affairs questions in Chinese: query in Chinese, language "zh-cn".
   Technical, programming or international topics: query in English, language "en".
5. If the question is about today, this week, recent events or news, set time_filter to "d", "w" or "m"; otherwise null.
6. Use search_type "news" for news or current events, otherwise "search".
7. If a location is given and the question is location-dependent (nearby, weather, recommendations), fold it into one query.

## Output
Reply with exactly one JSON object and nothing else:
{"search_queries": ["query 1", "query 2"], "language": "zh-cn", "time_filter": null, "search_type": "search"}

## Examples
Question: Python asyncio 教程
{"search_queries": ["Python asyncio tutorial"], "language": "en", "time_filter": null, "search_type": "search"}

Question: 北京今天天气怎么样
Location: 北京海淀
{"search_queries": ["北京今天天气", "北京海淀天气预报"], "language": "zh-cn", "time_filter": "d", "search_type": "search"}

Question: 特斯拉最新裁员新闻
{"search_queries": ["特斯拉 裁员", "Tesla layoffs news"], "language": "zh-cn", "time_filter": "w", "search_type": "news"}`

func buildPrompt(in Input) string {
	var hints strings.Builder
	if location := strings.TrimSpace(in.Location); location != "" {
		hints.WriteString("\nLocation: ")
		hints.WriteString(location)
	}
	if language := strings.TrimSpace(in.Language); language != "" {
		hints.WriteString("\nPreferred language: ")
		hints.WriteString(language)
	}
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(in.Query), hints.String())
}
