package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/pdfchat/internal/models"
	"go.uber.org/zap"
)

// ContextSeparator separates the contexts of multiple strategies.
const ContextSeparator = "\n\n---\n\n"

// Router runs the strategies chosen by its selector and combines their results.
type Router struct {
	strategies []Strategy
	selector   Selector
	logger     *zap.Logger
}

// NewRouter creates a router. A nil selector means RuleSelector.
func NewRouter(strategies []Strategy, selector Selector, logger *zap.Logger) *Router {
	if selector == nil {
		selector = RuleSelector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{strategies: strategies, selector: selector, logger: logger}
}

// Strategies returns the strategies the router chooses from.
func (r *Router) Strategies() []Strategy {
	return r.strategies
}

// Route selects strategies for query, runs them in order, and merges the results. Hits
// are deduplicated by segment ID with the first occurrence kept.
func (r *Router) Route(ctx context.Context, query string) (*models.Retrieval, error) {
	if len(r.strategies) == 0 {
		return nil, errors.New("router has no strategies")
	}
	picked, err := r.selector.Select(ctx, query, r.strategies)
	if err != nil {
		return nil, fmt.Errorf("failed to select strategy: %w", err)
	}

	results := make([]*models.Retrieval, 0, len(picked))
	for _, i := range picked {
		if i < 0 || i >= len(r.strategies) {
			return nil, fmt.Errorf("selector returned invalid strategy index %d", i)
		}
		st := r.strategies[i]
		res, err := st.Retrieve(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", st.Name(), err)
		}
		results = append(results, res)
	}
	combined := Combine(query, results)
	r.logger.Debug("query routed",
		zap.String("query", query),
		zap.Strings("strategies", combined.Strategies),
		zap.Int("hits", len(combined.Hits)))
	return combined, nil
}

// Combine merges retrievals in order. A single retrieval keeps its context unchanged;
// several are joined with ContextSeparator, each under a heading naming its strategy.
func Combine(query string, results []*models.Retrieval) *models.Retrieval {
	out := &models.Retrieval{Query: query}
	seen := make(map[string]bool)
	var contexts, summaries []string
	for _, res := range results {
		out.Strategies = append(out.Strategies, res.Strategies...)
		for _, h := range res.Hits {
			if h.Segment == nil || seen[h.Segment.ID] {
				continue
			}
			seen[h.Segment.ID] = true
			out.Hits = append(out.Hits, h)
		}
		if res.Summary != "" {
			summaries = append(summaries, res.Summary)
		}
		if len(results) == 1 {
			contexts = append(contexts, res.Context)
			continue
		}
		contexts = append(contexts, fmt.Sprintf("### %s\n%s", strings.Join(res.Strategies, ", "), res.Context))
	}
	out.Summary = strings.Join(summaries, "\n\n")
	out.Context = strings.Join(contexts, ContextSeparator)
	return out
}
