// Package retrieval routes a query to one or both retrieval strategies over the session
// index: targeted similarity search and whole-corpus tree summarization.
package retrieval

import (
	"context"

	"github.com/hyperjump/pdfchat/internal/keyword"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/vector"
)

// Strategy names and descriptions, as offered to the selector.
const (
	SimilarityName        = "vector search"
	SimilarityDescription = "useful for searching specific facts"
	SummaryName           = "summary"
	SummaryDescription    = "useful for summarizing whole document"
)

// Strategy retrieves context for a query.
type Strategy interface {
	Name() string
	Description() string
	Retrieve(ctx context.Context, query string) (*models.Retrieval, error)
}

// Corpus is the read side of a session collection.
type Corpus interface {
	Query(ctx context.Context, embedding []float32, k int) ([]*vector.VectorResult, error)
	KeywordQuery(ctx context.Context, text string, k int, opts *keyword.SearchOptions) ([]*keyword.KeywordResult, error)
	Get(ctx context.Context, ids []string) (map[string]*models.Segment, error)
	All(ctx context.Context) ([]models.Segment, error)
}
