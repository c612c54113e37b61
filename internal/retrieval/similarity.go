package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/keyword"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/vector"
)

// minCandidates is the smallest candidate pool fetched from each index before fusion.
const minCandidates = 20

// SimilarityStrategy returns the top-k segments by fused vector and keyword score.
type SimilarityStrategy struct {
	corpus         Corpus
	embedder       embedding.Embedder
	topK           int
	keywordWeight  float64
	semanticWeight float64
	keywordOpts    *keyword.SearchOptions
}

// NewSimilarityStrategy creates the strategy. A keyword weight of 0 gives pure vector similarity.
func NewSimilarityStrategy(corpus Corpus, embedder embedding.Embedder, topK int, keywordWeight, semanticWeight float64) *SimilarityStrategy {
	if topK <= 0 {
		topK = 5
	}
	return &SimilarityStrategy{
		corpus:         corpus,
		embedder:       embedder,
		topK:           topK,
		keywordWeight:  keywordWeight,
		semanticWeight: semanticWeight,
		keywordOpts:    &keyword.SearchOptions{FilenameBoost: 1.5},
	}
}

func (s *SimilarityStrategy) Name() string        { return SimilarityName }
func (s *SimilarityStrategy) Description() string { return SimilarityDescription }

// Retrieve runs keyword and vector search concurrently and fuses the candidates.
func (s *SimilarityStrategy) Retrieve(ctx context.Context, query string) (*models.Retrieval, error) {
	candidates := s.topK * 4
	if candidates < minCandidates {
		candidates = minCandidates
	}

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.VectorResult
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	if s.keywordWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := s.corpus.KeywordQuery(ctx, query, candidates, s.keywordOpts)
			if err != nil {
				errChan <- fmt.Errorf("keyword search failed: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		queryEmbedding, err := s.embedder.Embed(ctx, query)
		if err != nil {
			errChan <- fmt.Errorf("embedding failed: %w", err)
			return
		}
		results, err := s.corpus.Query(ctx, queryEmbedding, candidates)
		if err != nil {
			errChan <- fmt.Errorf("vector search failed: %w", err)
			return
		}
		semanticResults = results
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	semanticWeight := s.semanticWeight
	if s.keywordWeight <= 0 && semanticWeight <= 0 {
		semanticWeight = 1
	}
	fused := Fuse(NormalizeKeywordScores(keywordResults), NormalizeSemanticScores(semanticResults), s.keywordWeight, semanticWeight)
	if len(fused) > s.topK {
		fused = fused[:s.topK]
	}

	ids := make([]string, len(fused))
	for i, r := range fused {
		ids[i] = r.ID
	}
	segments, err := s.corpus.Get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}

	out := &models.Retrieval{Query: query, Strategies: []string{SimilarityName}}
	for _, r := range fused {
		seg, ok := segments[r.ID]
		if !ok {
			continue
		}
		out.Hits = append(out.Hits, &models.Hit{
			Segment:       seg,
			Score:         r.Score,
			KeywordScore:  r.KeywordScore,
			SemanticScore: r.SemanticScore,
			Rank:          len(out.Hits) + 1,
		})
	}
	out.Context = formatHits(out.Hits)
	return out, nil
}

// formatHits renders hits as numbered passages, each preceded by its citation.
func formatHits(hits []*models.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s", h.Rank, h.Citation(), h.Segment.Text)
	}
	return b.String()
}
