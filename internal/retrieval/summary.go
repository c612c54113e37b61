package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/pdfchat/internal/llm"
	"github.com/hyperjump/pdfchat/internal/models"
)

const summaryPromptTemplate = `Context information from multiple sources is below.
---------------------
%s
---------------------
Given the information from multiple sources and not prior knowledge, answer the query.
Query: %s
Answer: `

// SummaryStrategy tree-summarizes the whole collection against the query: segments are packed
// into groups under a character budget, each group is summarized by the LLM, and the
// summaries are packed and summarized again until a single text remains.
type SummaryStrategy struct {
	corpus    Corpus
	client    llm.Client
	groupSize int
}

// NewSummaryStrategy creates the strategy. groupSize is the per-call character budget.
func NewSummaryStrategy(corpus Corpus, client llm.Client, groupSize int) *SummaryStrategy {
	if groupSize <= 0 {
		groupSize = 12000
	}
	return &SummaryStrategy{corpus: corpus, client: client, groupSize: groupSize}
}

func (s *SummaryStrategy) Name() string        { return SummaryName }
func (s *SummaryStrategy) Description() string { return SummaryDescription }

// Retrieve summarizes every segment. The summary becomes the context.
func (s *SummaryStrategy) Retrieve(ctx context.Context, query string) (*models.Retrieval, error) {
	segments, err := s.corpus.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load segments: %w", err)
	}
	out := &models.Retrieval{Query: query, Strategies: []string{SummaryName}}
	if len(segments) == 0 {
		return out, nil
	}

	texts := make([]string, len(segments))
	for i := range segments {
		seg := &segments[i]
		texts[i] = fmt.Sprintf("(%s, page %d)\n%s", seg.Filename, seg.Page, seg.Text)
	}

	for {
		groups := packGroups(texts, s.groupSize)
		summaries := make([]string, len(groups))
		for i, g := range groups {
			answer, err := s.client.Complete(ctx, fmt.Sprintf(summaryPromptTemplate, strings.Join(g, "\n\n"), query))
			if err != nil {
				return nil, fmt.Errorf("failed to summarize: %w", err)
			}
			summaries[i] = strings.TrimSpace(answer)
		}
		if len(summaries) == 1 {
			out.Summary = summaries[0]
			out.Context = summaries[0]
			return out, nil
		}
		texts = summaries
	}
}

// packGroups packs texts in order into groups whose joined length stays within budget.
// When there is more than one text every group holds at least two, so each round of
// summarization shrinks the input.
func packGroups(texts []string, budget int) [][]string {
	if len(texts) <= 1 {
		return [][]string{texts}
	}
	var (
		groups  [][]string
		current []string
		size    int
	)
	for _, t := range texts {
		if len(current) >= 2 && size+len(t) > budget {
			groups = append(groups, current)
			current, size = nil, 0
		}
		current = append(current, t)
		size += len(t) + 2
	}
	if len(current) == 1 && len(groups) > 0 {
		last := len(groups) - 1
		groups[last] = append(groups[last], current[0])
	} else if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
