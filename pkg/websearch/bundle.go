package websearch

import (
	"fmt"
	"strings"

	"github.com/beeper/ai-websearch/pkg/fetch"
	"github.com/beeper/ai-websearch/pkg/rewrite"
	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

// SourceTruncationMarker ends a page body cut down by RenderContext.
const SourceTruncationMarker = "\n...[truncated]"

// Bundle is everything gathered for one request. Pages line up with the
// first len(Pages) entries of Sources.
type Bundle struct {
	Query        string          `json:"query"`
	Queries      []string        `json:"rewritten_queries"`
	Plan         rewrite.Plan    `json:"plan"`
	Sources      []search.Result `json:"sources"`
	Pages        []fetch.Page    `json:"pages"`
	Timings      Timings         `json:"timings"`
	SearchErrors []SearchFailure `json:"search_errors,omitempty"`
}

// Timings are per-stage wall-clock durations in milliseconds.
type Timings struct {
	RewriteMs int64 `json:"rewrite_ms"`
	SearchMs  int64 `json:"search_ms"`
	FetchMs   int64 `json:"fetch_ms"`
}

func (t Timings) TotalMs() int64 {
	return t.RewriteMs + t.SearchMs + t.FetchMs
}

// Citation is one reference the downstream answer may cite as [Index].
type Citation struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Stats summarizes a bundle.
type Stats struct {
	Sources   int `json:"sources"`
	Fetched   int `json:"fetched"`
	Succeeded int `json:"succeeded"`
}

func (b *Bundle) Stats() Stats {
	stats := Stats{Sources: len(b.Sources), Fetched: len(b.Pages)}
	for _, page := range b.Pages {
		if page.Succeeded {
			stats.Succeeded++
		}
	}
	return stats
}

// Citations lists successfully fetched pages, numbered 1..k in page order.
// The numbers match the "Source [n]" headings of RenderContext.
func (b *Bundle) Citations() []Citation {
	var citations []Citation
	for i, page := range b.Pages {
		if !page.Succeeded {
			continue
		}
		citations = append(citations, Citation{
			Index: len(citations) + 1,
			Title: b.pageTitle(i),
			URL:   page.URL,
		})
	}
	return citations
}

// RenderContext formats the bundle as a prompt block. Each page body is cut
// to maxCharsPerSource runes (0 uses the default). When no page was fetched
// successfully, the search snippets are listed instead.
func (b *Bundle) RenderContext(maxCharsPerSource int) string {
	if maxCharsPerSource <= 0 {
		maxCharsPerSource = DefaultMaxCharsPerSource
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results (query: %s)\n", b.Query)

	n := 0
	for i, page := range b.Pages {
		if !page.Succeeded {
			continue
		}
		n++
		body, truncated := stringutil.TruncateRunes(page.Body, maxCharsPerSource)
		if truncated {
			body += SourceTruncationMarker
		}
		fmt.Fprintf(&sb, "\n### Source [%d]: %s\nURL: %s\n%s\n", n, b.pageTitle(i), page.URL, body)
	}
	if n > 0 {
		return sb.String()
	}

	sb.WriteString("\n### Search snippets (page content could not be fetched)\n")
	for i, source := range b.Sources {
		fmt.Fprintf(&sb, "\n[%d] %s\n    URL: %s\n    %s\n", i+1, source.Title, source.URL, source.Snippet)
	}
	return sb.String()
}

func (b *Bundle) pageTitle(i int) string {
	title := strings.TrimSpace(b.Pages[i].Title)
	if title == "" && i < len(b.Sources) {
		title = b.Sources[i].Title
	}
	return stringutil.FirstNonEmpty(title, b.Pages[i].URL)
}
