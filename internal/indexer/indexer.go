package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/storage"
	"go.uber.org/zap"
)

// ErrNoSegments is returned by Build when there is nothing to index.
var ErrNoSegments = errors.New("no segments to index")

// Indexer embeds segments and stores them in a fresh collection of the session's vector store.
type Indexer struct {
	client     *storage.Client
	embedder   embedding.Embedder
	collection string
	batchSize  int
	logger     *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for build progress and cleanup warnings.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithBatchSize sets how many segments are embedded per request.
func WithBatchSize(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.batchSize = n
		}
	}
}

// NewIndexer creates an indexer writing to the named collection of client.
func NewIndexer(client *storage.Client, embedder embedding.Embedder, collection string, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		client:     client,
		embedder:   embedder,
		collection: collection,
		batchSize:  100,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build replaces the collection with one holding every segment. Any previous collection of
// the same name is deleted first; nothing is merged. Embedding and store errors are returned
// unchanged apart from wrapping, and leave no partial collection behind.
func (idx *Indexer) Build(ctx context.Context, segments []models.Segment) (*storage.Collection, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if err := idx.Drop(ctx); err != nil {
		return nil, err
	}

	col, err := idx.client.CreateCollection(ctx, idx.collection)
	if err != nil {
		return nil, err
	}
	if err := idx.fill(ctx, col, segments); err != nil {
		if dropErr := idx.client.DeleteCollection(ctx, idx.collection); dropErr != nil {
			idx.logger.Warn("failed to remove partial collection", zap.String("collection", idx.collection), zap.Error(dropErr))
		}
		return nil, err
	}
	idx.logger.Debug("index built",
		zap.String("collection", idx.collection),
		zap.Int("segments", len(segments)),
		zap.Int("dimensions", idx.embedder.Dimensions()))
	return col, nil
}

// Drop deletes the collection if it exists.
func (idx *Indexer) Drop(ctx context.Context) error {
	if _, err := idx.client.GetCollection(idx.collection); err != nil {
		if errors.Is(err, storage.ErrCollectionNotFound) {
			return nil
		}
		return err
	}
	return idx.client.DeleteCollection(ctx, idx.collection)
}

func (idx *Indexer) fill(ctx context.Context, col *storage.Collection, segments []models.Segment) error {
	for start := 0; start < len(segments); start += idx.batchSize {
		end := start + idx.batchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := make([]models.Segment, end-start)
		copy(batch, segments[start:end])

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}
		embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d segments", len(embeddings), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}
		if err := col.Add(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
