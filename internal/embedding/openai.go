package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/pdfchat/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures an OpenAIEmbedder. BaseURL may point at any OpenAI-compatible
// endpoint, e.g. Gemini's.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	BatchSize  int
	CacheSize  int
	MaxRetries int
	RetryDelay time.Duration
}

// OpenAIEmbedder calls the embeddings endpoint of an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	cache      *EmbeddingCache
	logger     *zap.Logger
}

// OpenAIOption configures an OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithLogger sets a logger for retries.
func WithLogger(l *zap.Logger) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewOpenAIEmbedder creates an embedder. Returns an error when the API key is empty.
func NewOpenAIEmbedder(cfg OpenAIConfig, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	e := &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		cache:      NewEmbeddingCache(cfg.CacheSize),
		logger:     zap.NewNop(),
	}
	if e.batchSize <= 0 {
		e.batchSize = 100
	}
	if e.retryDelay <= 0 {
		e.retryDelay = time.Second
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Embed returns the embedding for text, using cache when available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds texts in request batches, skipping texts already cached.
// Results are L2-normalized and returned in input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int
	for i, t := range texts {
		if v, ok := e.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, i)
	}

	for start := 0; start < len(missing); start += e.batchSize {
		end := start + e.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := make([]string, end-start)
		for j, idx := range missing[start:end] {
			batch[j] = texts[idx]
		}
		vecs, err := e.request(ctx, batch)
		if err != nil {
			return nil, err
		}
		for j, idx := range missing[start:end] {
			out[idx] = vecs[j]
			e.cache.Set(texts[idx], vecs[j])
		}
	}
	return out, nil
}

func (e *OpenAIEmbedder) request(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			wait := utils.CalculateBackoff(e.retryDelay, attempt)
			e.logger.Warn("retrying embedding request", zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: e.model,
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) != len(batch) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(batch))
			continue
		}

		vecs, err := placeEmbeddings(resp.Data, len(batch))
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(vecs) > 0 && len(vecs[0]) > 0 {
			e.dimensions = len(vecs[0])
		}
		return vecs, nil
	}
	return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries+1, lastErr)
}

// Dimensions returns the embedding dimension: the configured value until the first
// response reports the real one.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// placeEmbeddings orders response vectors by their input index and normalizes them. Every
// input must receive exactly one vector.
func placeEmbeddings(data []openai.Embedding, n int) ([][]float32, error) {
	vecs := make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		if vecs[d.Index] != nil {
			return nil, fmt.Errorf("duplicate embedding for input %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		utils.NormalizeL2(v)
		vecs[d.Index] = v
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return vecs, nil
}
