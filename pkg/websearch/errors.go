package websearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/beeper/ai-websearch/pkg/fetch"
	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/httputil"
)

var (
	ErrMissingSearchKey      = errors.New("search provider api key is not configured")
	ErrUnknownSearchProvider = errors.New("unknown search provider")
	ErrUnknownFetchProvider  = errors.New("unknown fetch provider")
	ErrInvalidPolicy         = errors.New("invalid search error policy")
	ErrEmptyQuery            = errors.New("query is empty")
)

// ConfigError names the setting that made construction fail.
type ConfigError struct {
	Field string
	Env   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("config %s (env %s): %v", e.Field, e.Env, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SearchError is a failed search for one rewritten query.
type SearchError struct {
	Query    string
	Provider string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search for %q failed: %v", e.Provider, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// SearchFailure is the serializable record of a skipped SearchError.
type SearchFailure struct {
	Query    string `json:"query"`
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// UserMessage maps pipeline errors to short messages for CLI and tool output.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var cfgErr *ConfigError
	var statusErr *httputil.StatusError
	var searchErr *SearchError
	switch {
	case errors.As(err, &cfgErr):
		if cfgErr.Env != "" {
			return fmt.Sprintf("configuration error: %v (set %s)", cfgErr.Err, cfgErr.Env)
		}
		return fmt.Sprintf("configuration error: %v", cfgErr.Err)
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, search.ErrEmptyQuery):
		return "please provide a search query"
	case errors.Is(err, context.Canceled):
		return "web search was cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "web search timed out"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("web search failed: provider returned HTTP %d", statusErr.StatusCode)
	case errors.As(err, &searchErr):
		return fmt.Sprintf("web search failed: %v", searchErr.Err)
	case errors.Is(err, fetch.ErrUnknownProvider):
		return fmt.Sprintf("configuration error: %v", err)
	default:
		return fmt.Sprintf("web search failed: %v", err)
	}
}
