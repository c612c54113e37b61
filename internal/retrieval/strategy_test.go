package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/indexer"
	"github.com/hyperjump/pdfchat/internal/llm/llmtest"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/storage"
)

func buildCorpus(t *testing.T, docs []models.PageDocument) (*storage.Collection, embedding.Embedder) {
	t.Helper()
	client, err := storage.NewEphemeralClient()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })
	emb := embedding.NewMockEmbedder(256)
	segs := indexer.NewChunker(800, 120).Split(docs)
	col, err := indexer.NewIndexer(client, emb, "user_session").Build(context.Background(), segs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return col, emb
}

func sampleDocs() []models.PageDocument {
	return []models.PageDocument{
		{ID: "d1", Filename: "report.pdf", Page: 1, Text: "Revenue in 2023 was 4 million dollars."},
		{ID: "d2", Filename: "report.pdf", Page: 2, Text: "The office cat sleeps on the printer."},
		{ID: "d3", Filename: "handbook.pdf", Page: 1, Text: "Employees receive twenty vacation days."},
	}
}

func TestSimilarityStrategy_Retrieve(t *testing.T) {
	col, emb := buildCorpus(t, sampleDocs())
	s := NewSimilarityStrategy(col, emb, 2, 0.3, 0.7)

	res, err := s.Retrieve(context.Background(), "What was the revenue in 2023?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("expected top 2 hits, got %d", len(res.Hits))
	}
	top := res.Hits[0]
	if !strings.HasPrefix(top.Segment.Text, "Revenue in 2023") || top.Rank != 1 {
		t.Errorf("unexpected top hit: %+v", top.Segment)
	}
	if top.KeywordScore != 1 {
		t.Errorf("only the revenue segment matches the keywords, score=%f", top.KeywordScore)
	}
	if !strings.HasPrefix(res.Context, "[1] (report.pdf, page 1)\nRevenue in 2023") {
		t.Errorf("context = %q", res.Context)
	}
	if len(res.Strategies) != 1 || res.Strategies[0] != SimilarityName {
		t.Errorf("strategies = %v", res.Strategies)
	}
}

func TestSimilarityStrategy_DefaultTopK(t *testing.T) {
	var docs []models.PageDocument
	for i := 0; i < 8; i++ {
		docs = append(docs, models.PageDocument{ID: string(rune('a' + i)), Filename: "x.pdf", Page: i + 1, Text: "Some page about budgets and plans."})
	}
	col, emb := buildCorpus(t, docs)
	res, err := NewSimilarityStrategy(col, emb, 0, 0, 1).Retrieve(context.Background(), "budgets")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Hits) != 5 {
		t.Errorf("expected 5 hits by default, got %d", len(res.Hits))
	}
}

func TestSummaryStrategy_TreeSummarize(t *testing.T) {
	var docs []models.PageDocument
	for i := 0; i < 5; i++ {
		docs = append(docs, models.PageDocument{ID: string(rune('a' + i)), Filename: "book.pdf", Page: i + 1, Text: "Chapter text that is long enough."})
	}
	col, _ := buildCorpus(t, docs)
	fake := &llmtest.Fake{Replies: []string{"part one", "part two", "final summary"}}
	s := NewSummaryStrategy(col, fake, 10)

	res, err := s.Retrieve(context.Background(), "Give me an overview")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if res.Summary != "final summary" || res.Context != "final summary" {
		t.Errorf("summary = %q, context = %q", res.Summary, res.Context)
	}
	prompts := fake.Prompts()
	if len(prompts) != 3 {
		t.Fatalf("expected 3 LLM calls (2 leaves + root), got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "(book.pdf, page 1)") || !strings.Contains(prompts[0], "Query: Give me an overview") {
		t.Errorf("leaf prompt missing citation or query: %q", prompts[0])
	}
	if !strings.Contains(prompts[2], "part one") || !strings.Contains(prompts[2], "part two") {
		t.Errorf("root prompt should combine leaf summaries: %q", prompts[2])
	}
}

func TestSummaryStrategy_SingleCallWhenItFits(t *testing.T) {
	col, _ := buildCorpus(t, sampleDocs())
	fake := &llmtest.Fake{Default: "all of it"}
	res, err := NewSummaryStrategy(col, fake, 0).Retrieve(context.Background(), "summary")
	if err != nil {
		t.Fatal(err)
	}
	if fake.Calls() != 1 || res.Summary != "all of it" {
		t.Errorf("calls=%d summary=%q", fake.Calls(), res.Summary)
	}
}

func TestPackGroups(t *testing.T) {
	texts := []string{"aaaaa", "bbbbb", "ccccc", "ddddd", "eeeee"}
	groups := packGroups(texts, 8)
	if len(groups) != 2 || len(groups[0]) != 2 || len(groups[1]) != 3 {
		t.Errorf("groups = %v", groups)
	}
	if got := packGroups([]string{"x"}, 1); len(got) != 1 || len(got[0]) != 1 {
		t.Errorf("single text: %v", got)
	}
	if got := packGroups(texts, 1000); len(got) != 1 {
		t.Errorf("everything should fit one group: %v", got)
	}
}
