// Package embedding provides text embedders (OpenAI-compatible API, local ONNX, deterministic
// mock) and an LRU cache.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/pdfchat/internal/config"
	"go.uber.org/zap"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New builds the embedder selected by cfg.Embedding.Provider.
func New(cfg *config.Config, logger *zap.Logger) (Embedder, error) {
	switch strings.ToLower(cfg.Embedding.Provider) {
	case "openai", "gemini", "":
		apiKey, err := cfg.LLM.APIKey()
		if err != nil {
			return nil, err
		}
		e, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     apiKey,
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			BatchSize:  cfg.Embedding.BatchSize,
			CacheSize:  cfg.Embedding.CacheSize,
			MaxRetries: cfg.Embedding.MaxRetries,
			RetryDelay: time.Duration(cfg.LLM.RetryDelayMillis) * time.Millisecond,
		}, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return e, nil
	case "onnx":
		e, err := NewONNXEmbedder(cfg.Embedding.ModelPath, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens, cfg.Embedding.CacheSize)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "mock":
		return NewMockEmbedder(cfg.Embedding.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
