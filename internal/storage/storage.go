// Package storage provides the session's ephemeral vector store: a client owning named
// collections of embedded segments. Nothing outlives the process.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/pdfchat/internal/keyword"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/vector"
	"go.uber.org/zap"
)

var (
	// ErrCollectionNotFound is returned when a collection does not exist or was deleted.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionExists is returned by CreateCollection for a name already in use.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrClientClosed is returned by every call after Close.
	ErrClientClosed = errors.New("vector store client closed")
)

// Client is an ephemeral, in-process vector store. Each client owns a private SQLite
// database for segment text and per-collection vector and keyword indices.
type Client struct {
	store       *segmentStore
	collections map[string]*Collection
	closed      bool
	mu          sync.Mutex
	logger      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a logger for collection lifecycle events.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewEphemeralClient creates an empty in-memory client.
func NewEphemeralClient(opts ...ClientOption) (*Client, error) {
	store, err := openSegmentStore()
	if err != nil {
		return nil, err
	}
	c := &Client{
		store:       store,
		collections: make(map[string]*Collection),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateCollection creates an empty collection.
func (c *Client) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if _, ok := c.collections[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	kw, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	if err := c.store.createCollection(ctx, name); err != nil {
		_ = kw.Close()
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	col := &Collection{name: name, store: c.store, keywords: kw}
	c.collections[name] = col
	c.logger.Debug("collection created", zap.String("collection", name))
	return col, nil
}

// GetCollection returns an existing collection.
func (c *Client) GetCollection(name string) (*Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	col, ok := c.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return col, nil
}

// DeleteCollection drops a collection with all its segments, vectors and keyword postings.
// Handles to the collection fail with ErrCollectionNotFound afterwards.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	col, ok := c.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(c.collections, name)
	col.drop()
	if err := c.store.deleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	c.logger.Debug("collection deleted", zap.String("collection", name))
	return nil
}

// ListCollections returns the names of live collections.
func (c *Client) ListCollections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.collections))
	for name := range c.collections {
		names = append(names, name)
	}
	return names
}

// Close drops every collection and the backing database.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for name, col := range c.collections {
		col.drop()
		delete(c.collections, name)
	}
	return c.store.close()
}

// Collection is a named set of embedded segments supporting vector and keyword queries.
type Collection struct {
	name     string
	store    *segmentStore
	vectors  *vector.MemoryIndex
	keywords *keyword.BleveIndex
	dropped  bool
	mu       sync.RWMutex
}

// Name returns the collection name.
func (col *Collection) Name() string {
	return col.name
}

// Add stores segments. Every segment must carry an embedding of the same dimension; the
// first Add fixes the collection's dimension.
func (col *Collection) Add(ctx context.Context, segments []models.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	if col.dropped {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}

	ids := make([]string, len(segments))
	vecs := make([][]float32, len(segments))
	for i := range segments {
		if len(segments[i].Embedding) == 0 {
			return fmt.Errorf("segment %s has no embedding", segments[i].ID)
		}
		ids[i] = segments[i].ID
		vecs[i] = segments[i].Embedding
	}
	if col.vectors == nil {
		idx, err := vector.NewMemoryIndex(len(vecs[0]))
		if err != nil {
			return fmt.Errorf("failed to create vector index: %w", err)
		}
		col.vectors = idx
	}
	for i, v := range vecs {
		if len(v) != col.vectors.Dimensions() {
			return fmt.Errorf("segment %s: embedding dimension %d, collection expects %d", ids[i], len(v), col.vectors.Dimensions())
		}
	}

	start := col.vectors.Size()
	if err := col.store.batchInsert(ctx, col.name, start, segments); err != nil {
		return fmt.Errorf("failed to store segments: %w", err)
	}
	if err := col.vectors.Add(ctx, ids, vecs); err != nil {
		return fmt.Errorf("failed to index vectors: %w", err)
	}
	if err := col.keywords.Index(ctx, segments); err != nil {
		return fmt.Errorf("failed to index keywords: %w", err)
	}
	return nil
}

// Query returns the k segments nearest to embedding.
func (col *Collection) Query(ctx context.Context, embedding []float32, k int) ([]*vector.VectorResult, error) {
	col.mu.RLock()
	defer col.mu.RUnlock()
	if col.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}
	if col.vectors == nil {
		return nil, nil
	}
	return col.vectors.Search(ctx, embedding, k)
}

// KeywordQuery returns up to k segments matching text.
func (col *Collection) KeywordQuery(ctx context.Context, text string, k int, opts *keyword.SearchOptions) ([]*keyword.KeywordResult, error) {
	col.mu.RLock()
	defer col.mu.RUnlock()
	if col.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}
	return col.keywords.Search(ctx, text, k, opts)
}

// Get returns the segments with the given IDs, keyed by ID. Unknown IDs are omitted.
func (col *Collection) Get(ctx context.Context, ids []string) (map[string]*models.Segment, error) {
	col.mu.RLock()
	defer col.mu.RUnlock()
	if col.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}
	return col.store.get(ctx, col.name, ids)
}

// All returns every segment in insertion order.
func (col *Collection) All(ctx context.Context) ([]models.Segment, error) {
	col.mu.RLock()
	defer col.mu.RUnlock()
	if col.dropped {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}
	return col.store.all(ctx, col.name)
}

// Count returns the number of stored segments.
func (col *Collection) Count(ctx context.Context) (int, error) {
	col.mu.RLock()
	defer col.mu.RUnlock()
	if col.dropped {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, col.name)
	}
	return col.store.count(ctx, col.name)
}

func (col *Collection) drop() {
	col.mu.Lock()
	defer col.mu.Unlock()
	col.dropped = true
	if col.vectors != nil {
		_ = col.vectors.Close()
	}
	_ = col.keywords.Close()
}
