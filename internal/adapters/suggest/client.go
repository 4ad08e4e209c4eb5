// Package suggest asks an OpenAI-compatible chat-completions endpoint for
// retention improvement advice.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/retention/pkg/logger"
	"github.com/okian/retention/pkg/metrics"
)

// SystemPrompt frames every request.
const SystemPrompt = "You are a YouTube retention expert."

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 512
)

// Suggester produces advice for a prompt.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}

// Client is a minimal chat-completions client.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	http        *http.Client
	logger      logger.Logger
}

// New creates a client. Without WithAPIKey every call returns ErrDisabled.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:    defaultEndpoint,
		model:       defaultModel,
		maxTokens:   400,
		temperature: 0.7,
		http:        &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("suggest")
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Suggest sends prompt and returns the first choice's text.
func (c *Client) Suggest(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		metrics.RecordSuggestion("disabled", 0)
		return "", ErrDisabled
	}

	start := time.Now()
	text, err := c.complete(ctx, prompt)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordSuggestion("error", elapsed)
		metrics.RecordErrorByComponent("suggest", "upstream")
		c.logger.Warn(ctx, "suggestion failed", logger.Error(err))
		return "", err
	}
	metrics.RecordSuggestion("ok", elapsed)
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: %w", ErrUpstream, ErrEmptyAnswer)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
