package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/pdfchat/internal/models"
)

func newTestIndex(t *testing.T, segments ...models.Segment) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	if len(segments) > 0 {
		if err := idx.Index(context.Background(), segments); err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	return idx
}

func TestBleveIndex_SearchFindsContent(t *testing.T) {
	idx := newTestIndex(t,
		models.Segment{ID: "s1", Filename: "monthly_report.pdf", Page: 1, Text: "This report mentions Omnisyan and other findings."},
		models.Segment{ID: "s2", Filename: "monthly_report.pdf", Page: 2, Text: "The Bayes app is also referenced."},
	)
	ctx := context.Background()

	results, err := idx.Search(ctx, "Omnisyan", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s1" {
		t.Fatalf("expected s1 only, got %+v", results)
	}

	results, err = idx.Search(ctx, "bayes", 10, nil)
	if err != nil {
		t.Fatalf("Search bayes: %v", err)
	}
	if len(results) == 0 || results[0].ID != "s2" {
		t.Fatalf("expected s2 first for bayes, got %+v", results)
	}
}

func TestBleveIndex_SearchFindsFilename(t *testing.T) {
	idx := newTestIndex(t,
		models.Segment{ID: "s1", Filename: "quarterly_budget_2023.pdf", Page: 1, Text: "Some body text."},
		models.Segment{ID: "s2", Filename: "notes.pdf", Page: 1, Text: "Unrelated body text."},
	)
	results, err := idx.Search(context.Background(), "budget", 10, &SearchOptions{FilenameBoost: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s1" {
		t.Fatalf("expected filename match s1, got %+v", results)
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newTestIndex(t, models.Segment{ID: "s1", Filename: "a.pdf", Text: "Reconciliation of accounts."})
	ctx := context.Background()

	exact, _ := idx.Search(ctx, "reconcilation", 10, nil)
	if len(exact) != 0 {
		t.Fatalf("misspelling should not match exactly, got %+v", exact)
	}
	fuzzy, err := idx.Search(ctx, "reconcilation", 10, &SearchOptions{FuzzyEnabled: true, Fuzziness: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(fuzzy) != 1 {
		t.Fatalf("fuzzy search should match, got %+v", fuzzy)
	}
}

func TestBleveIndex_DeleteAndCount(t *testing.T) {
	idx := newTestIndex(t, models.Segment{ID: "s1", Text: "onlyinsegment"})
	ctx := context.Background()

	if n, _ := idx.DocCount(); n != 1 {
		t.Fatalf("DocCount = %d", n)
	}
	if err := idx.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	results, err := idx.Search(ctx, "onlyinsegment", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results after delete, got %d", len(results))
	}
}

func TestBleveIndex_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t, models.Segment{ID: "s1", Text: "text"})
	results, err := idx.Search(context.Background(), "   ", 10, nil)
	if err != nil || results != nil {
		t.Errorf("empty query: results=%v err=%v", results, err)
	}
}

func TestNormalizeFilename(t *testing.T) {
	if got := normalizeFilename("annual_report-2021.pdf"); got != "annual report 2021 pdf" {
		t.Errorf("normalizeFilename = %q", got)
	}
}
