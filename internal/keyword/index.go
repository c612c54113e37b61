// Package keyword provides keyword (BM25-style) search over segment text.
package keyword

import (
	"context"

	"github.com/hyperjump/pdfchat/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// FilenameBoost multiplies the score contribution from matches in the filename field.
	// Use 1.0 (or 0) for no boost.
	FilenameBoost float64
	// FuzzyEnabled enables fuzzy matching for OCR noise and typos.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default 1.
	Fuzziness int
}

// KeywordIndex defines keyword search operations over segments.
type KeywordIndex interface {
	Index(ctx context.Context, segments []models.Segment) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
