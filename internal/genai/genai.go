// Package genai provides the completion gateway client for Salamatbot.
//
// It wraps the OpenAI chat completion API pointed at an OpenAI-compatible
// endpoint (OpenRouter by default). The gateway is consumed as a stateless
// request/response call; conversation state lives with the caller.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for the completion gateway.
const (
	// DefaultBaseURL targets the OpenRouter OpenAI-compatible endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is used when no model name is configured.
	DefaultModel = "openai/gpt-4o-mini"
	// DefaultTimeout bounds a single completion call. On expiry the
	// caller substitutes its fixed apology string rather than hanging.
	DefaultTimeout = 30 * time.Second
	// DefaultTemperature is fixed; the consultation instruction does the
	// steering, not sampling variance.
	DefaultTemperature = 0.7
)

// ClientInterface defines the minimal completion operation consumed by
// the dialogue context manager.
type ClientInterface interface {
	// GenerateWithMessages generates a completion from a full message
	// list (system context plus conversation turns).
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Opts holds configuration options for the completion client.
type Opts struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Option configures client construction.
type Option func(*Opts)

// WithAPIKey sets the completion-service credential.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithBaseURL overrides the completion endpoint.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithModel sets the model name sent with each request.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a completion client. The API key is required.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{
		BaseURL: DefaultBaseURL,
		Model:   DefaultModel,
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion API key not set")
	}
	slog.Debug("genai.NewClient: creating completion client", "baseURL", cfg.BaseURL, "model", cfg.Model, "timeout", cfg.Timeout)

	return &Client{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL)),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// GenerateWithMessages sends the message list to the completion service
// and returns the assistant text, trimmed. A response without choices is
// treated as a gateway error. Calls are never retried here.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(DefaultTemperature),
	})
	if err != nil {
		slog.Error("genai.GenerateWithMessages: completion request failed", "error", err, "model", c.model)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.GenerateWithMessages: no choices returned", "model", c.model)
		return "", fmt.Errorf("completion response contained no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("genai.GenerateWithMessages: completion succeeded", "model", c.model, "responseLength", len(content))
	return content, nil
}
