// Package llm wraps the chat-completion endpoint used for question condensing, routing,
// summarization and the final answer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client generates text from a single prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion is returned when the model answers with no choices.
var ErrEmptyCompletion = errors.New("no completion choices returned")

// OpenAIConfig configures an OpenAIClient. BaseURL may point at any OpenAI-compatible
// endpoint; the default is Gemini's.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// OpenAIClient calls CreateChatCompletion with retries and exponential backoff.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxRetries  int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithLogger sets a logger for retry warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *OpenAIClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewOpenAIClient creates a client. The HTTP client carries the request timeout.
func NewOpenAIClient(cfg OpenAIConfig, opts ...Option) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("LLM model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		logger:      zap.NewNop(),
	}
	if c.retryDelay <= 0 {
		c.retryDelay = time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// New builds the client described by cfg.LLM.
func New(cfg *config.Config, logger *zap.Logger) (*OpenAIClient, error) {
	apiKey, err := cfg.LLM.APIKey()
	if err != nil {
		return nil, err
	}
	return NewOpenAIClient(OpenAIConfig{
		APIKey:      apiKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  time.Duration(cfg.LLM.RetryDelayMillis) * time.Millisecond,
		Timeout:     time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second,
	}, WithLogger(logger))
}

// Complete sends prompt as a single user message and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := utils.CalculateBackoff(c.retryDelay, attempt)
			c.logger.Warn("retrying completion", zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: c.temperature,
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, ErrEmptyCompletion)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("failed to complete after %d attempts: %w", c.maxRetries+1, lastErr)
}
