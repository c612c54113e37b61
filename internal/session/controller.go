// Package session owns one user's documents, index and chat engine, and moves them
// through the Empty, Documented and Ready states.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/internal/conversation"
	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/extract"
	"github.com/hyperjump/pdfchat/internal/indexer"
	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/retrieval"
	"github.com/hyperjump/pdfchat/internal/storage"
	"go.uber.org/zap"
)

// Extractor turns uploaded files into page documents.
type Extractor interface {
	Extract(ctx context.Context, files []models.UploadedFile) ([]models.PageDocument, extract.Report)
}

// Controller is the session state machine. It is not safe for concurrent use; wrap it in a
// Dispatcher to serialize events from several sources.
type Controller struct {
	cfg       *config.Config
	extractor Extractor
	chunker   *indexer.Chunker
	embedder  embedding.Embedder
	llm       llm.Client
	logger    *zap.Logger

	documents []models.PageDocument
	segments  []models.Segment
	client    *storage.Client
	indexer   *indexer.Indexer
	indexed   int
	index     *retrieval.Index
	engine    *conversation.Engine
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates an empty session.
func NewController(cfg *config.Config, extractor Extractor, embedder embedding.Embedder, client llm.Client, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		extractor: extractor,
		chunker:   indexer.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		embedder:  embedder,
		llm:       client,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State derives the lifecycle state from what the session holds.
func (c *Controller) State() models.State {
	switch {
	case c.engine != nil:
		return models.StateReady
	case len(c.documents) > 0:
		return models.StateDocumented
	default:
		return models.StateEmpty
	}
}

// Status returns a snapshot of the session.
func (c *Controller) Status() models.SessionStatus {
	st := models.SessionStatus{
		State:     c.State(),
		Documents: len(c.documents),
		Segments:  len(c.segments),
		Filenames: models.Filenames(c.documents),
	}
	if c.engine != nil {
		st.Turns = len(c.engine.History())
		st.Collection = c.cfg.Retrieval.CollectionName
		st.Indexed = c.indexed
		for _, s := range c.index.Router().Strategies() {
			st.Strategies = append(st.Strategies, s.Name())
		}
	}
	return st
}

// Upload extracts the files, appends their pages to the session, re-chunks every document
// and rebuilds the index from scratch. With no segments the session stays Empty or
// Documented. If the index cannot be built the documents are kept, the session is left
// Documented and the error is returned.
func (c *Controller) Upload(ctx context.Context, files []models.UploadedFile) (*models.UploadResult, error) {
	docs, report := c.extractor.Extract(ctx, files)
	c.documents = append(c.documents, docs...)
	c.segments = c.chunker.Split(c.documents)
	c.indexed = 0
	c.index, c.engine = nil, nil

	result := &models.UploadResult{
		Status:       fmt.Sprintf("Uploaded %d pages from %d files.", len(c.documents), len(files)),
		Pages:        len(docs),
		Files:        len(files),
		FilesOpened:  report.FilesOpened,
		OCRAttempts:  report.OCRAttempts,
		SkippedPages: report.Skipped,
		Segments:     len(c.segments),
	}
	if report.FilesOpened < len(files) || report.Skipped > 0 {
		c.logger.Warn("upload partially ingested",
			zap.Int("files", len(files)),
			zap.Int("files_opened", report.FilesOpened),
			zap.Int("pages_skipped", report.Skipped))
	}

	if len(c.segments) == 0 {
		result.State = c.State()
		return result, nil
	}

	if err := c.buildIndex(ctx); err != nil {
		result.State = c.State()
		c.logger.Error("index build failed", append(c.snapshotFields(), zap.Error(err))...)
		return result, fmt.Errorf("failed to build index: %w", err)
	}
	result.State = c.State()
	c.logger.Info("upload indexed",
		zap.String("status", result.Status),
		zap.Int("segments", len(c.segments)))
	return result, nil
}

func (c *Controller) buildIndex(ctx context.Context) error {
	if c.client == nil {
		client, err := storage.NewEphemeralClient(storage.WithLogger(c.logger))
		if err != nil {
			return err
		}
		c.client = client
		c.indexer = indexer.NewIndexer(client, c.embedder, c.cfg.Retrieval.CollectionName,
			indexer.WithLogger(c.logger), indexer.WithBatchSize(c.cfg.Embedding.BatchSize))
	}
	col, err := c.indexer.Build(ctx, c.segments)
	if err != nil {
		return err
	}
	n, err := col.Count(ctx)
	if err != nil {
		return err
	}
	if n != len(c.segments) {
		return fmt.Errorf("collection holds %d segments, expected %d", n, len(c.segments))
	}
	index := retrieval.NewIndex(col, c.embedder, c.llm, c.cfg.Retrieval, c.logger)
	engine := conversation.NewEngine(index.Router(), c.llm, models.Filenames(c.documents),
		c.cfg.Chat.MemoryTokenLimit, conversation.WithLogger(c.logger))
	c.indexed = n
	c.index, c.engine = index, engine
	return nil
}

// Chat answers a question. It fails with ErrEngineNotInitialized unless the session is Ready.
func (c *Controller) Chat(ctx context.Context, question string) (*models.ChatResponse, error) {
	if c.engine == nil {
		c.logger.Error("chat before index was built", c.snapshotFields()...)
		return nil, ErrEngineNotInitialized
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	return c.engine.Chat(ctx, question)
}

// Reset destroys the collection and clears every piece of session state. A failure to
// delete the collection is logged and ignored. Calling Reset on an empty session is a no-op.
func (c *Controller) Reset(ctx context.Context) {
	if c.indexer != nil {
		if err := c.indexer.Drop(ctx); err != nil {
			c.logger.Warn("failed to delete collection on reset",
				zap.String("collection", c.cfg.Retrieval.CollectionName), zap.Error(err))
		}
	}
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.logger.Warn("failed to close vector store on reset", zap.Error(err))
		}
	}
	c.documents = nil
	c.segments = nil
	c.client = nil
	c.indexer = nil
	c.indexed = 0
	c.index = nil
	c.engine = nil
	c.logger.Debug("session reset")
}

// Close releases the vector store.
func (c *Controller) Close() error {
	c.Reset(context.Background())
	return nil
}

func (c *Controller) snapshotFields() []zap.Field {
	fields := []zap.Field{
		zap.Stringer("state", c.State()),
		zap.Int("documents", len(c.documents)),
		zap.Int("segments", len(c.segments)),
		zap.Bool("index", c.index != nil),
		zap.Bool("engine", c.engine != nil),
	}
	if c.client != nil {
		fields = append(fields, zap.Strings("collections", c.client.ListCollections()))
	}
	return fields
}
