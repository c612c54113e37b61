package retrieval

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/pdfchat/internal/llm"
	"go.uber.org/zap"
)

// Selector chooses which strategies answer a query. It returns indices into strategies,
// ascending and without duplicates.
type Selector interface {
	Select(ctx context.Context, query string, strategies []Strategy) ([]int, error)
}

var (
	summaryCues = cuePattern("summary", "summarize", "summarise", "overview", "overall",
		"main points", "key points", "gist", "tl;dr", "outline", "combined")
	factCues = cuePattern("what", "who", "when", "where", "which", "how many", "how much",
		"define", "list", "quote", "page", "number")
)

func cuePattern(cues ...string) *regexp.Regexp {
	quoted := make([]string, len(cues))
	for i, c := range cues {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(c), " ", `\s+`)
	}
	return regexp.MustCompile(`(^|[^\pL\pN_])(` + strings.Join(quoted, "|") + `)($|[^\pL\pN_])`)
}

// RuleSelector is the default policy. A summary cue selects summarization; a summary cue
// together with a fact cue selects both; anything else selects similarity search.
type RuleSelector struct{}

// Select implements Selector.
func (RuleSelector) Select(_ context.Context, query string, strategies []Strategy) ([]int, error) {
	if len(strategies) == 0 {
		return nil, errors.New("no strategies to select from")
	}
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	wantSummary := summaryCues.MatchString(q)
	wantFacts := factCues.MatchString(q)

	sim, sum := indexOf(strategies, SimilarityName), indexOf(strategies, SummaryName)
	var picked []int
	switch {
	case wantSummary && wantFacts:
		picked = appendIndex(picked, sim, sum)
	case wantSummary:
		picked = appendIndex(picked, sum)
	default:
		picked = appendIndex(picked, sim)
	}
	if len(picked) == 0 {
		picked = []int{0}
	}
	sort.Ints(picked)
	return picked, nil
}

func indexOf(strategies []Strategy, name string) int {
	for i, s := range strategies {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func appendIndex(dst []int, idx ...int) []int {
	for _, i := range idx {
		if i >= 0 {
			dst = append(dst, i)
		}
	}
	return dst
}

const selectPromptTemplate = `Some choices are given below. It is provided in a numbered list (1 to %d), where each item in the list corresponds to a summary.
---------------------
%s
---------------------
Using only the choices above and not prior knowledge, return the top choices (no more than %d, but only select what is needed) that are most relevant to the question: '%s'
Reply with the choice numbers only, separated by commas.`

var choiceRe = regexp.MustCompile(`\d+`)

// LLMSelector asks the language model which strategies fit the query and falls back to
// another selector when the call fails or the reply names no valid choice.
type LLMSelector struct {
	client   llm.Client
	fallback Selector
	logger   *zap.Logger
}

// NewLLMSelector creates an LLM-backed selector with RuleSelector as fallback.
func NewLLMSelector(client llm.Client, logger *zap.Logger) *LLMSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSelector{client: client, fallback: RuleSelector{}, logger: logger}
}

// Select implements Selector.
func (s *LLMSelector) Select(ctx context.Context, query string, strategies []Strategy) ([]int, error) {
	var choices strings.Builder
	for i, st := range strategies {
		fmt.Fprintf(&choices, "(%d) %s: %s\n", i+1, st.Name(), st.Description())
	}
	prompt := fmt.Sprintf(selectPromptTemplate, len(strategies), strings.TrimRight(choices.String(), "\n"), len(strategies), query)

	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("strategy selection failed, using rules", zap.Error(err))
		return s.fallback.Select(ctx, query, strategies)
	}
	picked := parseChoices(reply, len(strategies))
	if len(picked) == 0 {
		s.logger.Warn("strategy selection reply had no valid choice, using rules", zap.String("reply", reply))
		return s.fallback.Select(ctx, query, strategies)
	}
	return picked, nil
}

// parseChoices extracts 1-based choice numbers from reply as sorted 0-based indices.
func parseChoices(reply string, n int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, m := range choiceRe.FindAllString(reply, -1) {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > n || seen[v-1] {
			continue
		}
		seen[v-1] = true
		out = append(out, v-1)
	}
	sort.Ints(out)
	return out
}
