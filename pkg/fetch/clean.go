package fetch

import (
	"strings"

	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

// TruncationMarker is appended to a body cut at the configured max length.
const TruncationMarker = "\n\n...[truncated]"

const (
	shortLinkMaxRunes  = 80
	maxConsecutiveLink = 3
	titleMaxRunes      = 100
)

// Clean drops navigation noise from reader output: runs of more than three
// short link lines, bare image lines, and lines that reference blob: URIs.
func Clean(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	consecutiveLinks := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isShortLinkLine(trimmed) {
			consecutiveLinks++
			if consecutiveLinks > maxConsecutiveLink {
				continue
			}
		} else {
			consecutiveLinks = 0
		}
		if strings.HasPrefix(trimmed, "![") && strings.Contains(trimmed, "](") {
			continue
		}
		if strings.Contains(trimmed, "blob:") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

func isShortLinkLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "[") &&
		strings.HasSuffix(trimmed, ")") &&
		stringutil.RuneLen(trimmed) < shortLinkMaxRunes
}

// ExtractTitle returns the first non-blank line, without heading markers.
func ExtractTitle(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		title, _ := stringutil.TruncateRunes(trimmed, titleMaxRunes)
		return title
	}
	return ""
}

// Truncate cuts body to maxLength runes and appends TruncationMarker when anything was cut.
func Truncate(body string, maxLength int) string {
	cut, truncated := stringutil.TruncateRunes(body, maxLength)
	if !truncated {
		return body
	}
	return cut + TruncationMarker
}
