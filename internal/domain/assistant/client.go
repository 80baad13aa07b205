package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Typed client errors. The HTTP layer maps them to fixed user-facing
// messages; none are retried.
var (
	ErrAPIKeyNotConfigured = errors.New("assistant: API key not configured")
	ErrEmptyResponse       = errors.New("assistant: empty model response")
)

// APIError is a non-2xx response from the model endpoint.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant: API error %d: %s", e.Status, e.Detail)
}

// ClientConfig configures the LLM client.
type ClientConfig struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	// DevProxy marks the local development proxy, which injects its own
	// credentials; the Authorization header is omitted against it.
	DevProxy bool
	// RequestsPerMinute throttles outgoing calls; zero disables throttling.
	RequestsPerMinute int
}

// Client calls the chat-completions style model endpoint.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// NewClient creates an LLM client.
func NewClient(cfg ClientConfig) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: limiter,
		tracer:  otel.Tracer("assistant"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

// Complete sends one system+user message pair and returns the model's reply
// text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if !c.cfg.DevProxy && c.cfg.APIKey == "" {
		return "", ErrAPIKeyNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "assistant.Complete",
		trace.WithAttributes(attribute.String("model", c.cfg.Model)))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("assistant: rate limit wait: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !c.cfg.DevProxy {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("assistant: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Detail: string(raw)}
	}

	text, err := extractReplyText(raw)
	if err != nil {
		return "", err
	}
	return text, nil
}

// extractReplyText accepts the three response shapes seen across providers,
// in preference order: OpenAI-style choices, Anthropic-style content blocks,
// plain string content.
func extractReplyText(raw []byte) (string, error) {
	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("assistant: decode response: %w", err)
	}

	if len(envelope.Choices) > 0 && envelope.Choices[0].Message.Content != "" {
		return envelope.Choices[0].Message.Content, nil
	}

	if len(envelope.Content) > 0 {
		var blocks []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(envelope.Content, &blocks); err == nil {
			for _, b := range blocks {
				if b.Type == "text" && b.Text != "" {
					return b.Text, nil
				}
			}
		}

		var plain string
		if err := json.Unmarshal(envelope.Content, &plain); err == nil && plain != "" {
			return plain, nil
		}
	}

	return "", ErrEmptyResponse
}
