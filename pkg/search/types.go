package search

import "strings"

// Type selects the search vertical.
type Type string

const (
	TypeSearch Type = "search"
	TypeNews   Type = "news"
)

// ParseType maps free-form input to a Type, defaulting to TypeSearch.
func ParseType(value string) Type {
	if strings.EqualFold(strings.TrimSpace(value), string(TypeNews)) {
		return TypeNews
	}
	return TypeSearch
}

// Recency restricts results to a publication window. The zero value means no filter.
type Recency string

const (
	RecencyNone  Recency = ""
	RecencyDay   Recency = "day"
	RecencyWeek  Recency = "week"
	RecencyMonth Recency = "month"
)

// ParseRecency accepts both the long form and the single-letter shorthand.
// Anything else yields RecencyNone.
func ParseRecency(value string) Recency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "d", "day":
		return RecencyDay
	case "w", "week":
		return RecencyWeek
	case "m", "month":
		return RecencyMonth
	default:
		return RecencyNone
	}
}

// Code is the single-letter shorthand used by Google-style `qdr:` filters.
func (r Recency) Code() string {
	switch r {
	case RecencyDay:
		return "d"
	case RecencyWeek:
		return "w"
	case RecencyMonth:
		return "m"
	default:
		return ""
	}
}

// Request represents a normalized web search request.
type Request struct {
	Query    string
	Count    int
	Type     Type
	Country  string
	Language string
	Recency  Recency
}

// Result is one ranked search hit. URL is the identity used for deduplication.
// Rank is 1-based and local to the query that produced it.
type Result struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Rank      int    `json:"rank"`
	Published string `json:"published,omitempty"`
	SiteName  string `json:"site_name,omitempty"`
}

// Response is a normalized search response.
type Response struct {
	Query    string
	Provider string
	TookMs   int64
	Results  []Result
}
