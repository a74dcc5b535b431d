package stringutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	htmlTagRE          = regexp.MustCompile(`<[^>]*>`)
	mdEmphasisPrefixRE = regexp.MustCompile("^[*`~_\"]+")
	mdEmphasisSuffixRE = regexp.MustCompile("[*`~_\"]+$")
)

// EnvOr returns value (trimmed) if non-empty, otherwise returns existing.
func EnvOr(existing, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}

// FirstNonEmpty returns the first non-empty string after trimming.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// StripMarkup removes HTML tags and the markdown emphasis or quotes that models
// like to wrap short phrases in, then trims surrounding whitespace.
func StripMarkup(text string) string {
	text = htmlTagRE.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.TrimSpace(text)
	text = mdEmphasisPrefixRE.ReplaceAllString(text, "")
	text = mdEmphasisSuffixRE.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// TruncateRunes cuts value to at most max code points.
// The second return value reports whether anything was cut.
func TruncateRunes(value string, max int) (string, bool) {
	if max < 0 || utf8.RuneCountInString(value) <= max {
		return value, false
	}
	count := 0
	for i := range value {
		if count == max {
			return value[:i], true
		}
		count++
	}
	return value, false
}

// RuneLen is the length of value in code points.
func RuneLen(value string) int {
	return utf8.RuneCountInString(value)
}
