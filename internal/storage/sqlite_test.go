package storage

import (
	"context"
	"testing"

	"github.com/hyperjump/pdfchat/internal/models"
)

func TestSegmentStore_CollectionsAreSeparate(t *testing.T) {
	store, err := openSegmentStore()
	if err != nil {
		t.Fatal(err)
	}
	defer store.close()
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		if err := store.createCollection(ctx, name); err != nil {
			t.Fatalf("createCollection(%s): %v", name, err)
		}
	}
	segs := []models.Segment{
		{ID: "x", DocumentID: "d", Filename: "f.pdf", Page: 1, Index: 0, Text: "first"},
		{ID: "y", DocumentID: "d", Filename: "f.pdf", Page: 2, Index: 1, Text: "second"},
	}
	if err := store.batchInsert(ctx, "a", 0, segs); err != nil {
		t.Fatal(err)
	}
	if err := store.batchInsert(ctx, "b", 0, segs[:1]); err != nil {
		t.Fatalf("same IDs in another collection: %v", err)
	}

	if n, _ := store.count(ctx, "a"); n != 2 {
		t.Errorf("count(a) = %d", n)
	}
	if err := store.deleteCollection(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.count(ctx, "a"); n != 0 {
		t.Errorf("count(a) after delete = %d", n)
	}
	got, err := store.get(ctx, "b", []string{"x"})
	if err != nil || got["x"] == nil || got["x"].Text != "first" {
		t.Errorf("collection b lost its segment: %+v, %v", got, err)
	}
}

func TestSegmentStore_DuplicateIDRollsBack(t *testing.T) {
	store, err := openSegmentStore()
	if err != nil {
		t.Fatal(err)
	}
	defer store.close()
	ctx := context.Background()
	_ = store.createCollection(ctx, "c")

	dup := []models.Segment{
		{ID: "s", DocumentID: "d", Filename: "f.pdf", Page: 1, Text: "one"},
		{ID: "s", DocumentID: "d", Filename: "f.pdf", Page: 1, Text: "two"},
	}
	if err := store.batchInsert(ctx, "c", 0, dup); err == nil {
		t.Fatal("expected duplicate ID error")
	}
	if n, _ := store.count(ctx, "c"); n != 0 {
		t.Errorf("failed batch should leave no rows, got %d", n)
	}
}
