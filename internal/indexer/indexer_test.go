package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/pdfchat/internal/embedding"
	"github.com/hyperjump/pdfchat/internal/models"
	"github.com/hyperjump/pdfchat/internal/storage"
)

type failingEmbedder struct {
	*embedding.MockEmbedder
	err error
}

func (f *failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, f.err
}

func newClient(t *testing.T) *storage.Client {
	t.Helper()
	c, err := storage.NewEphemeralClient()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func segments(n int) []models.Segment {
	docs := make([]models.PageDocument, n)
	for i := range docs {
		docs[i] = models.PageDocument{ID: string(rune('a' + i)), Text: "Some sentence about topic.", Filename: "f.pdf", Page: i + 1}
	}
	return NewChunker(50, 5).Split(docs)
}

func TestIndexer_BuildReplacesCollection(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	idx := NewIndexer(client, embedding.NewMockEmbedder(32), "user_session", WithBatchSize(2))

	first, err := idx.Build(ctx, segments(3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n, _ := first.Count(ctx); n != 3 {
		t.Fatalf("count = %d", n)
	}

	second, err := idx.Build(ctx, segments(5))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if n, _ := second.Count(ctx); n != 5 {
		t.Errorf("rebuilt count = %d, want 5 with no merge", n)
	}
	if _, err := first.Count(ctx); !errors.Is(err, storage.ErrCollectionNotFound) {
		t.Errorf("old collection handle should be dropped, got %v", err)
	}
	if names := client.ListCollections(); len(names) != 1 || names[0] != "user_session" {
		t.Errorf("collections = %v", names)
	}
}

func TestIndexer_EmbeddingErrorPropagates(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	boom := errors.New("embedding quota exceeded")
	idx := NewIndexer(client, &failingEmbedder{MockEmbedder: embedding.NewMockEmbedder(8), err: boom}, "user_session")

	if _, err := idx.Build(ctx, segments(2)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped embedding error, got %v", err)
	}
	if _, err := client.GetCollection("user_session"); !errors.Is(err, storage.ErrCollectionNotFound) {
		t.Errorf("failed build must not leave a collection, got %v", err)
	}
}

func TestIndexer_NoSegments(t *testing.T) {
	idx := NewIndexer(newClient(t), embedding.NewMockEmbedder(8), "user_session")
	if _, err := idx.Build(context.Background(), nil); !errors.Is(err, ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestIndexer_DropMissingIsNoop(t *testing.T) {
	idx := NewIndexer(newClient(t), embedding.NewMockEmbedder(8), "user_session")
	if err := idx.Drop(context.Background()); err != nil {
		t.Errorf("Drop on missing collection: %v", err)
	}
}
