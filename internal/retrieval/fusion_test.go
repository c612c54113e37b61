package retrieval

import (
	"testing"

	"github.com/hyperjump/pdfchat/internal/keyword"
	"github.com/hyperjump/pdfchat/internal/vector"
)

func TestNormalizeKeywordScores(t *testing.T) {
	results := []*keyword.KeywordResult{
		{ID: "a", Score: 2},
		{ID: "b", Score: 4},
		{ID: "c", Score: 1},
	}
	m := NormalizeKeywordScores(results)
	if m["b"] != 1.0 {
		t.Errorf("max score should be 1.0, got %f", m["b"])
	}
	if m["a"] != 0.5 {
		t.Errorf("a should be 0.5, got %f", m["a"])
	}
	if len(m) != 3 {
		t.Errorf("expected 3 entries, got %d", len(m))
	}
	if len(NormalizeKeywordScores(nil)) != 0 {
		t.Error("nil results should give an empty map")
	}
}

func TestNormalizeSemanticScores(t *testing.T) {
	results := []*vector.VectorResult{
		{ID: "s1", Score: 0.9},
		{ID: "s2", Score: 0.5},
	}
	m := NormalizeSemanticScores(results)
	if m["s1"] != 0.9 || m["s2"] != 0.5 {
		t.Errorf("unexpected map %v", m)
	}
}

func TestFuse(t *testing.T) {
	kw := map[string]float64{"s1": 1.0, "s2": 0.5}
	sem := map[string]float64{"s1": 0.5, "s2": 1.0, "s3": 0.2}
	results := Fuse(kw, sem, 0.3, 0.7)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "s2" {
		t.Errorf("s2 should rank first with semantic weight 0.7, got %s", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Error("results should be sorted by score descending")
		}
	}
}

func TestFuse_TiesAreDeterministic(t *testing.T) {
	sem := map[string]float64{"b": 0.5, "a": 0.5, "c": 0.5}
	for i := 0; i < 5; i++ {
		results := Fuse(nil, sem, 0, 1)
		if results[0].ID != "a" || results[1].ID != "b" || results[2].ID != "c" {
			t.Fatalf("tie order not stable: %s %s %s", results[0].ID, results[1].ID, results[2].ID)
		}
	}
}
