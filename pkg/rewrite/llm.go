package rewrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
	"go.mau.fi/util/random"

	"github.com/beeper/ai-websearch/pkg/search"
	"github.com/beeper/ai-websearch/pkg/shared/logutil"
	"github.com/beeper/ai-websearch/pkg/shared/stringutil"
)

// FailureReason classifies why the LLM path produced no plan.
type FailureReason string

const (
	ReasonHTTP       FailureReason = "http"
	ReasonEmpty      FailureReason = "empty"
	ReasonJSON       FailureReason = "json"
	ReasonValidation FailureReason = "validation"
)

const previewRunes = 300

// Failure describes an unusable LLM attempt. It is a value, not an error:
// every failure is recovered by falling back to the rules.
type Failure struct {
	Reason     FailureReason
	StatusCode int
	Err        error
	// Preview is the start of the model output, when there was any.
	Preview string
}

func (f *Failure) String() string {
	msg := string(f.Reason)
	if f.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", f.StatusCode)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// LLM rewrites with one chat-completion call to an OpenAI-compatible endpoint.
type LLM struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	log         zerolog.Logger
}

// NewLLM builds the LLM strategy from cfg. It does not check for an API key.
func NewLLM(cfg *Config, log zerolog.Logger) *LLM {
	cfg = cfg.WithDefaults()
	log = log.With().Str("component", "rewrite").Logger()
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.timeout()),
		option.WithMiddleware(makeTraceMiddleware(log)),
	)
	return &LLM{
		client:      client,
		model:       cfg.Model,
		temperature: *cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.timeout(),
		log:         log,
	}
}

// New picks the LLM strategy when cfg carries a usable key, the rules otherwise.
func New(cfg *Config, log zerolog.Logger) Rewriter {
	if cfg.WithDefaults().UsesLLM() {
		return NewLLM(cfg, log)
	}
	return Rules{}
}

// Rewrite tries the model once and falls back to the rules on any failure.
func (l *LLM) Rewrite(ctx context.Context, in Input) Plan {
	plan, failure := l.Attempt(ctx, in)
	if failure == nil {
		return plan
	}
	log := logutil.FromContext(ctx, l.log)
	event := log.Warn().
		Str("reason", string(failure.Reason)).
		Err(failure.Err)
	if failure.StatusCode != 0 {
		event = event.Int("status_code", failure.StatusCode)
	}
	if failure.Preview != "" {
		event = event.Str("preview", failure.Preview)
	}
	event.Msg("LLM rewrite failed, falling back to rules")

	plan = RewriteWithRules(in)
	plan.Strategy = StrategyFallback
	return plan
}

// Attempt performs the model call without any fallback.
func (l *LLM) Attempt(ctx context.Context, in Input) (Plan, *Failure) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(l.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(buildPrompt(in))},
		Temperature: openai.Float(l.temperature),
		MaxTokens:   openai.Int(int64(l.maxTokens)),
	})
	if err != nil {
		failure := &Failure{Reason: ReasonHTTP, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			failure.StatusCode = apiErr.StatusCode
		}
		return Plan{}, failure
	}

	var text string
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if text == "" {
		return Plan{}, &Failure{Reason: ReasonEmpty, Err: errors.New("model returned no content")}
	}
	preview, _ := stringutil.TruncateRunes(text, previewRunes)

	parsed, err := parseModelPlan(text)
	if err != nil {
		return Plan{}, &Failure{Reason: ReasonJSON, Err: err, Preview: preview}
	}
	plan, err := planFromModel(parsed)
	if err != nil {
		return Plan{}, &Failure{Reason: ReasonValidation, Err: err, Preview: preview}
	}
	return plan, nil
}

func planFromModel(parsed modelPlan) (Plan, error) {
	queries := make([]string, 0, len(parsed.SearchQueries))
	for _, query := range parsed.SearchQueries {
		if query = stringutil.StripMarkup(query); query != "" {
			queries = append(queries, query)
		}
	}
	if len(queries) == 0 {
		return Plan{}, errors.New("missing search_queries")
	}
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}
	plan := Plan{
		Queries:  queries,
		Language: strings.ToLower(strings.TrimSpace(parsed.Language)),
		Type:     search.ParseType(parsed.SearchType),
		Strategy: StrategyLLM,
	}
	if plan.Language == "" {
		plan.Language = DefaultLanguage
	}
	if parsed.TimeFilter != nil {
		plan.Recency = search.ParseRecency(*parsed.TimeFilter)
	}
	return plan, nil
}

func makeTraceMiddleware(log zerolog.Logger) option.Middleware {
	traceLog := log.With().Str("component", "llm_http").Logger()
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()
		requestID := strings.TrimSpace(req.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = "rw_" + random.String(12)
			req.Header.Set("x-request-id", requestID)
		}
		traceLog.Debug().
			Str("request_id", requestID).
			Str("request_path", req.URL.Path).
			Msg("Dispatching rewrite request")

		resp, err := next(req)
		elapsedMs := time.Since(start).Milliseconds()
		if err != nil {
			traceLog.Debug().Err(err).
				Str("request_id", requestID).
				Int64("duration_ms", elapsedMs).
				Msg("Rewrite request failed")
			return nil, err
		}
		traceLog.Debug().
			Str("request_id", requestID).
			Int("status_code", resp.StatusCode).
			Int64("duration_ms", elapsedMs).
			Msg("Rewrite response")
		return resp, nil
	}
}
