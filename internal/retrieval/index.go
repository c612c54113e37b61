package retrieval

import (
	"strings"

	"github.com/hyperjump/pdfchat/internal/config"
	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/llm"
	"go.uber.org/zap"
)

// Index is the queryable view of one session collection: the similarity and summary
// strategies over it and the router choosing between them.
type Index struct {
	similarity *SimilarityStrategy
	summary    *SummaryStrategy
	router     *Router
}

// NewIndex builds both strategies over corpus and a router using the selector named in
// cfg ("rules" or "llm").
func NewIndex(corpus Corpus, embedder embedding.Embedder, client llm.Client, cfg config.RetrievalConfig, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &Index{
		similarity: NewSimilarityStrategy(corpus, embedder, cfg.SimilarityTopK, cfg.KeywordWeight, cfg.SemanticWeight),
		summary:    NewSummaryStrategy(corpus, client, cfg.SummaryGroupSize),
	}
	var selector Selector = RuleSelector{}
	if strings.EqualFold(cfg.Selector, "llm") {
		selector = NewLLMSelector(client, logger)
	}
	idx.router = NewRouter([]Strategy{idx.similarity, idx.summary}, selector, logger)
	return idx
}

// Router returns the query router.
func (idx *Index) Router() *Router { return idx.router }
