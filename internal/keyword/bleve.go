package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/pdfchat/internal/models"
)

// BleveIndex implements KeywordIndex with a memory-only Bleve index.
type BleveIndex struct {
	index bleve.Index
}

type segmentDoc struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}

// NewBleveIndex creates an empty in-memory index. Nothing is written to disk.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize, no stemming, so names and codes match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("filename", textFieldMapping)
	pageMapping := bleve.NewNumericFieldMapping()
	pageMapping.Index = false
	docMapping.AddFieldMappingsAt("page", pageMapping)
	im.AddDocumentMapping("segment", docMapping)
	im.DefaultType = "segment"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds segments in one batch.
func (b *BleveIndex) Index(ctx context.Context, segments []models.Segment) error {
	batch := b.index.NewBatch()
	for i := range segments {
		s := &segments[i]
		doc := segmentDoc{
			Content:  s.Text,
			Filename: normalizeFilename(s.Filename),
			Page:     s.Page,
		}
		if err := batch.Index(s.ID, doc); err != nil {
			return fmt.Errorf("failed to index segment %s: %w", s.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply keyword batch: %w", err)
	}
	return nil
}

// Search runs a match query over content and filename and returns up to limit results.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	filenameBoost := 1.0
	fuzzy := false
	fuzziness := 1
	if opts != nil {
		if opts.FilenameBoost > 0 {
			filenameBoost = opts.FilenameBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	var contentQuery, filenameQuery blevequery.Query
	if fuzzy {
		contentQuery = buildFuzzyQuery(query, fuzziness, "content", 1.0)
		filenameQuery = buildFuzzyQuery(query, fuzziness, "filename", filenameBoost)
	} else {
		cq := bleve.NewMatchQuery(query)
		cq.SetField("content")
		fq := bleve.NewMatchQuery(query)
		fq.SetField("filename")
		fq.SetBoost(filenameBoost)
		contentQuery, filenameQuery = cq, fq
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(contentQuery, filenameQuery))
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term, on field.
func buildFuzzyQuery(queryStr string, fuzziness int, field string, boost float64) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms with surrounding punctuation removed.
func tokenizeQuery(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if w != "" {
			terms = append(terms, w)
		}
	}
	return terms
}

// normalizeFilename turns "annual_report_2021.pdf" into "annual report 2021 pdf" so the
// standard analyzer can match its words.
func normalizeFilename(name string) string {
	r := strings.NewReplacer("_", " ", "-", " ", ".", " ")
	return r.Replace(name)
}

// Delete removes a segment from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed segments.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
