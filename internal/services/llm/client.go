package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"precis/internal/paper"
)

const (
	defaultBaseURL             = "https://api.openai.com/v1/chat/completions"
	defaultHTTPTimeout         = 120 * time.Second
	defaultMaxAttempts         = 3
	defaultBackoffStep         = 500 * time.Millisecond
	defaultMaxCompletionTokens = 2000
)

// Config captures the runtime settings required to talk to the
// generation endpoint.
type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	MaxCompletionTokens int
	TimeoutSeconds      int
}

// Client wraps the chat completion API behind the bounded retry policy
// used for summarization. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client

	maxAttempts int
	backoffStep time.Duration
	sleeper     func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Passing the shared
// pipeline client keeps one connection pool across all workers.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxAttempts overrides the total attempt budget (defaults to 3).
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithBackoffStep overrides the retry wait step. The wait before
// attempt n is step * n.
func WithBackoffStep(step time.Duration) Option {
	return func(c *Client) {
		if step >= 0 {
			c.backoffStep = step
		}
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs a summarization client using the supplied
// configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:              strings.TrimSpace(cfg.APIKey),
			BaseURL:             strings.TrimSpace(cfg.BaseURL),
			Model:               strings.TrimSpace(cfg.Model),
			MaxCompletionTokens: cfg.MaxCompletionTokens,
			TimeoutSeconds:      cfg.TimeoutSeconds,
		},
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: defaultMaxAttempts,
		backoffStep: defaultBackoffStep,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.MaxCompletionTokens <= 0 {
		client.cfg.MaxCompletionTokens = defaultMaxCompletionTokens
	}
	return client
}

type chatCompletionRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("generation request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "generation request: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// Summarize produces the finished artifact document for one paper. The
// extracted text is truncated before the first attempt; retries always
// resubmit the identical prompt.
func (c *Client) Summarize(ctx context.Context, p paper.Paper, text string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("summarize: api key required")
	}
	payload := chatCompletionRequest{
		Model:               c.cfg.Model,
		Messages:            []chatMessage{{Role: "user", Content: buildPrompt(p, text)}},
		MaxCompletionTokens: c.cfg.MaxCompletionTokens,
	}
	content, err := c.completionWithRetry(ctx, payload, "summarize")
	if err != nil {
		return "", err
	}
	return assembleDocument(p, content), nil
}

// HealthCheck issues a minimal completion to verify the credential and
// model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("llm health: api key required")
	}
	payload := chatCompletionRequest{
		Model:               c.cfg.Model,
		Messages:            []chatMessage{{Role: "user", Content: "Respond with the single word: ok"}},
		MaxCompletionTokens: 16,
	}
	_, err := c.completionWithRetry(ctx, payload, "llm health")
	return err
}

func (c *Client) completionWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	attempts := c.maxAttempts
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.backoffStep*time.Duration(attempt)); err != nil {
				return "", err
			}
		}
		content, err := c.requestOnce(ctx, payload, op)
		if err == nil {
			return content, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) requestOnce(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transportError{err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transportError{err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: response carried no choices", op)
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%s: response carried empty content", op)
	}
	return content, nil
}

// retryable reports whether an attempt failure is transient. Transport
// errors, HTTP 429 and any 5xx qualify; everything else, including
// bodies that cannot be decoded, is terminal.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}
	var transport *transportError
	return errors.As(err, &transport)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
