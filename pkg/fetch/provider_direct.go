package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

// directProvider downloads the page itself and converts HTML to markdown-like text.
type directProvider struct {
	cfg DirectConfig
}

func newDirectProvider(cfg *Config) Provider {
	if cfg == nil {
		return nil
	}
	return &directProvider{cfg: cfg.Direct}
}

func (p *directProvider) Name() string {
	return ProviderDirect
}

func (p *directProvider) Fetch(ctx context.Context, req Request) (*Response, error) {
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https")
	}
	if !p.cfg.AllowPrivate && !isAllowedHost(parsedURL.Hostname()) {
		return nil, fmt.Errorf("url not allowed")
	}

	client := p.client(req.Timeout)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", p.cfg.UserAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httputil.StatusError{StatusCode: resp.StatusCode, Body: resp.Status}
	}

	contentType := normalizeContentType(resp.Header.Get("Content-Type"))
	text := string(body)
	switch {
	case strings.Contains(contentType, "html"):
		text, err = htmlToMarkdown(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
	case strings.Contains(contentType, "application/json"):
		var decoded any
		if json.Unmarshal(body, &decoded) == nil {
			pretty, _ := json.MarshalIndent(decoded, "", "  ")
			text = string(pretty)
		}
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{
		URL:         req.URL,
		FinalURL:    finalURL,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Text:        text,
		Provider:    ProviderDirect,
		TookMs:      time.Since(start).Milliseconds(),
	}, nil
}

// client re-checks redirect targets and, unless private networks are allowed,
// refuses to dial blocked addresses after DNS resolution.
func (p *directProvider) client(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !p.cfg.AllowPrivate {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second, Control: guardDial}
		transport.DialContext = dialer.DialContext
		transport.Proxy = nil
	}
	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: p.checkRedirect,
	}
}

func (p *directProvider) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= p.cfg.MaxRedirects {
		return errors.New("too many redirects")
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect must use http or https")
	}
	if !p.cfg.AllowPrivate && !isAllowedHost(req.URL.Hostname()) {
		return fmt.Errorf("redirect to %s not allowed", req.URL.Hostname())
	}
	return nil
}

// guardDial runs after name resolution, so address always carries an IP.
func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return fmt.Errorf("address %s not allowed", host)
	}
	return nil
}

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, blockquote"

// htmlToMarkdown keeps headings, paragraphs, list items and code blocks, in
// document order. The og:title (or <title>) becomes a leading `#` heading.
func htmlToMarkdown(body []byte) (string, error) {
	og := opengraph.NewOpenGraph()
	_ = og.ProcessHTML(bytes.NewReader(body))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(og.Title)
	if title == "" {
		title = collapseSpace(doc.Find("title").First().Text())
	}
	doc.Find("script, style, noscript, iframe, svg, template").Remove()

	var lines []string
	if title != "" {
		lines = append(lines, "# "+title, "")
	}
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are rendered by their outermost ancestor.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if line := renderBlock(s); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 || (title != "" && len(lines) == 2) {
		if text := collapseSpace(doc.Find("body").Text()); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func renderBlock(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if tag == "pre" {
		code := strings.TrimRight(s.Text(), "\n")
		if strings.TrimSpace(code) == "" {
			return ""
		}
		return "```\n" + code + "\n```"
	}
	text := collapseSpace(s.Text())
	if text == "" {
		return ""
	}
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text
	case "li":
		links := s.Find("a[href]")
		if links.Length() == 1 && collapseSpace(links.Text()) == text {
			href, _ := links.Attr("href")
			return "[" + text + "](" + href + ")"
		}
		return "- " + text
	case "blockquote":
		return "> " + text
	default:
		return text
	}
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func normalizeContentType(value string) string {
	if value == "" {
		return "application/octet-stream"
	}
	parts := strings.Split(value, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}

var fetchBlockedCIDRs = []*net.IPNet{
	mustParseCIDR("0.0.0.0/8"),
	mustParseCIDR("127.0.0.0/8"),
	mustParseCIDR("10.0.0.0/8"),
	mustParseCIDR("172.16.0.0/12"),
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("169.254.0.0/16"),
	mustParseCIDR("::1/128"),
	mustParseCIDR("fc00::/7"),
	mustParseCIDR("fe80::/10"),
}

func mustParseCIDR(value string) *net.IPNet {
	_, parsed, err := net.ParseCIDR(value)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR %q: %v", value, err))
	}
	return parsed
}

func isAllowedHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return true
	}
	return !isBlockedIP(ip)
}

func isBlockedIP(ip net.IP) bool {
	if ip.IsUnspecified() {
		return true
	}
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
	}
	for _, cidr := range fetchBlockedCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
