package fetch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanDropsNavigationRuns(t *testing.T) {
	input := strings.Join([]string{
		"# Heading",
		"[Home](https://a.com/)",
		"[News](https://a.com/news)",
		"[Sports](https://a.com/sports)",
		"[Tech](https://a.com/tech)",
		"[Money](https://a.com/money)",
		"Body paragraph.",
		"[One](https://a.com/1)",
	}, "\n")
	got := Clean(input)
	want := strings.Join([]string{
		"# Heading",
		"[Home](https://a.com/)",
		"[News](https://a.com/news)",
		"[Sports](https://a.com/sports)",
		"Body paragraph.",
		"[One](https://a.com/1)",
	}, "\n")
	if got != want {
		t.Fatalf("unexpected cleaned text:\n%s", got)
	}
}

func TestCleanKeepsLongLinkLines(t *testing.T) {
	long := "[" + strings.Repeat("x", 80) + "](https://a.com)"
	input := strings.Repeat(long+"\n", 5)
	got := Clean(strings.TrimSuffix(input, "\n"))
	if strings.Count(got, long) != 5 {
		t.Fatalf("expected long link lines to survive, got %q", got)
	}
}

func TestCleanDropsImagesAndBlobs(t *testing.T) {
	input := "intro\n![logo](https://a.com/logo.png)\nsee blob:https://a.com/123\n  ![x](y)\noutro"
	if got := Clean(input); got != "intro\noutro" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestExtractTitle(t *testing.T) {
	long := strings.Repeat("字", 150)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "heading", in: "\n\n## Hello World \nbody", want: "Hello World"},
		{name: "plain", in: "  First line  \nsecond", want: "First line"},
		{name: "long", in: long, want: strings.Repeat("字", 100)},
		{name: "empty", in: " \n\t\n", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractTitle(tc.in); got != tc.want {
				t.Fatalf("ExtractTitle() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncateLaw(t *testing.T) {
	body := strings.Repeat("网页内容", 100)
	for _, maxLength := range []int{1, 10, 399} {
		got := Truncate(body, maxLength)
		markerLen := utf8.RuneCountInString(TruncationMarker)
		if utf8.RuneCountInString(got) > maxLength+markerLen {
			t.Fatalf("max %d: body too long (%d runes)", maxLength, utf8.RuneCountInString(got))
		}
		if !strings.HasSuffix(got, TruncationMarker) {
			t.Fatalf("max %d: expected truncation marker", maxLength)
		}
	}
	if got := Truncate(body, 400); got != body {
		t.Fatalf("body of exactly max length should be untouched")
	}
	if got := Truncate("short", 400); got != "short" {
		t.Fatalf("short body should be untouched, got %q", got)
	}
}
