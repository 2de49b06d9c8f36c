// Package openai provides a grader.Client backed by the OpenAI chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"rightfit/pkg/grader"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	temperature    = 0.2
)

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient defaults to a client with a 60s timeout.
	HTTPClient *http.Client
}

// Client calls /chat/completions and parses the reply into a grade. It is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// Ensure Client conforms to the grader.Client interface at compile time.
var _ grader.Client = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}

	return c
}

// ParseRateLimit extracts the request budget from OpenAI x-ratelimit-*
// headers. Missing headers yield a zero status. The reset header is a
// duration relative to now such as "6m0s" or "20ms".
func ParseRateLimit(h http.Header, now time.Time) (grader.RateLimitStatus, error) {
	atoi := func(s string) int {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}

		return 0
	}
	rl := grader.RateLimitStatus{
		Limit:     atoi(h.Get("X-Ratelimit-Limit-Requests")),
		Remaining: atoi(h.Get("X-Ratelimit-Remaining-Requests")),
	}

	reset := strings.TrimSpace(h.Get("X-Ratelimit-Reset-Requests"))
	if reset == "" {
		return rl, nil
	}
	d, err := time.ParseDuration(reset)
	if err != nil {
		return rl, errors.Wrapf(err, "parse reset %q", reset)
	}
	rl.ResetAt = now.Add(d)

	return rl, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Model string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Grade builds the prompt for req, sends it and parses the reply.
func (c *Client) Grade(ctx context.Context, req grader.Request) (grader.Result, grader.RateLimitStatus, error) {
	ctx, span := otel.Tracer("rightfit/grader/openai").Start(ctx, "openai.chat_completions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("openai.model", c.model)))
	defer span.End()

	res, rl, err := c.grade(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade failed")
	}

	return res, rl, err
}

func (c *Client) grade(ctx context.Context, req grader.Request) (grader.Result, grader.RateLimitStatus, error) {
	system, user := grader.BuildPrompt(req)
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}
	body.ResponseFormat.Type = "json_object"

	b, err := json.Marshal(body)
	if err != nil {
		return grader.Result{}, grader.RateLimitStatus{}, errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return grader.Result{}, grader.RateLimitStatus{}, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return grader.Result{}, grader.RateLimitStatus{}, errors.Wrap(err, "send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	rl, err := ParseRateLimit(resp.Header, time.Now())
	if err != nil {
		logger.Warn(ctx, "could not parse openai rate limit headers", zap.Error(err))
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return grader.Result{}, rl, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return grader.Result{}, rl, serrors.With(serrors.ErrRateLimited, "openai rate limited: %s", errorMessage(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return grader.Result{}, rl, errors.Errorf("chat completion failed with status %d: %s", resp.StatusCode, errorMessage(respBody))
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return grader.Result{}, rl, errors.Wrap(err, "decode response")
	}
	if len(cr.Choices) == 0 {
		return grader.Result{}, rl, errors.New("chat completion returned no choices")
	}

	res, err := grader.Parse(cr.Choices[0].Message.Content)
	if err != nil {
		return grader.Result{}, rl, errors.Wrap(err, "parse grade")
	}
	res.Model = cr.Model
	if res.Model == "" {
		res.Model = c.model
	}

	return res, rl, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}

	return strings.TrimSpace(string(body))
}
