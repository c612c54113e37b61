package embedding

import (
	"context"
	"testing"

	"github.com/hyperjump/pdfchat/internal/vector"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "quarterly revenue grew")
	b, _ := e.Embed(ctx, "quarterly revenue grew")
	if len(a) != 64 {
		t.Fatalf("dims = %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text must embed identically")
		}
	}
}

func TestMockEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	vecs, err := e.EmbedBatch(ctx, []string{
		"What was the revenue in 2023?",
		"Revenue in 2023 was 4 million dollars.",
		"The office cat sleeps on the printer.",
	})
	if err != nil {
		t.Fatal(err)
	}
	related := vector.InnerProduct(vecs[0], vecs[1])
	unrelated := vector.InnerProduct(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("related=%f should exceed unrelated=%f", related, unrelated)
	}
}

func TestMockEmbedder_EmptyText(t *testing.T) {
	e := NewMockEmbedder(8)
	v, err := e.Embed(context.Background(), "  ...  ")
	if err != nil {
		t.Fatal(err)
	}
	if v[0] != 1 {
		t.Errorf("empty text should map to the first unit vector, got %v", v)
	}
}

func TestMockEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockEmbedder(8).Embed(ctx, "x"); err == nil {
		t.Error("expected context error")
	}
}
