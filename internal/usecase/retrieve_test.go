package usecase

import (
	"context"
	"testing"
	"time"

	"personarag/internal/adapter/cache"
	"personarag/internal/adapter/embedding"
	"personarag/internal/domain"
	"personarag/internal/index"
	"personarag/internal/retriever"
)

func TestRetrieveRequiresIndex(t *testing.T) {
	u := NewRetrieveUseCase(
		index.NewHolder(),
		retriever.New(embedding.NewMockEmbedder(32), 0),
		nil,
	)

	_, err := u.Retrieve(context.Background(), domain.Query{Text: "q", K: 1})
	if err == nil {
		t.Error("expected error when no index is loaded")
	}
}

func TestRetrieveServesFromSnapshot(t *testing.T) {
	u := NewRetrieveUseCase(
		index.NewHolder(),
		retriever.New(embedding.NewMockEmbedder(32), 0),
		cache.NewQueryCache(10, time.Minute),
	)
	u.Install(testSnapshot(t))

	q := domain.Query{Text: "RAG platform", K: 2}

	first, err := u.Retrieve(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 results, got %d", len(first))
	}

	// Second call is served from cache and must be identical.
	second, err := u.Retrieve(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].Chunk.ID != second[i].Chunk.ID {
			t.Error("cached result differs from original")
		}
	}
}

func TestInstallSwapsSnapshotAndDropsCache(t *testing.T) {
	c := cache.NewQueryCache(10, time.Minute)
	u := NewRetrieveUseCase(
		index.NewHolder(),
		retriever.New(embedding.NewMockEmbedder(32), 0),
		c,
	)
	u.Install(testSnapshot(t))

	q := domain.Query{Text: "RAG platform", K: 1}
	if _, err := u.Retrieve(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if c.Size() == 0 {
		t.Fatal("expected cached entry after retrieval")
	}

	u.Install(testSnapshot(t))
	if c.Size() != 0 {
		t.Error("expected cache dropped after snapshot swap")
	}
}
