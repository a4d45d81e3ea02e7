package usecase

import (
	"errors"
	"strings"
	"testing"

	"personarag/internal/adapter/analyzer"
	"personarag/internal/domain"
)

func scored(speaker, content, file string, seq int, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.ConversationChunk{
			ID:            content[:3],
			Speaker:       speaker,
			Content:       content,
			SourceFile:    file,
			SequenceIndex: seq,
		},
		Score: score,
	}
}

func TestPackRespectsBudget(t *testing.T) {
	u := NewPackUseCase(analyzer.NewTokenizer())

	results := domain.RetrievalResult{
		scored("Alex", "one short high value answer", "a.md", 0, 0.9),
		scored("Alex", strings.Repeat("long rambling answer with many words ", 40), "a.md", 1, 0.8),
		scored("Alex", "another compact answer", "a.md", 2, 0.7),
	}

	packed, err := u.Pack("query", results, 20)
	if err != nil {
		t.Fatal(err)
	}

	if packed.UsedTokens > packed.BudgetTokens {
		t.Errorf("used %d tokens over budget %d", packed.UsedTokens, packed.BudgetTokens)
	}
	for _, s := range packed.Snippets {
		if strings.Contains(s.Text, "long rambling") {
			t.Error("oversized chunk should have been skipped")
		}
	}
	if len(packed.Snippets) == 0 {
		t.Error("expected the compact chunks to fit")
	}
}

func TestPackRestoresTranscriptOrder(t *testing.T) {
	u := NewPackUseCase(analyzer.NewTokenizer())

	// Retrieval order is by score; packing should re-sort into reading
	// order per file.
	results := domain.RetrievalResult{
		scored("Alex", "third turn content", "a.md", 2, 0.9),
		scored("Alex", "first turn content", "a.md", 0, 0.8),
		scored("Alex", "second turn content", "a.md", 1, 0.7),
	}

	packed, err := u.Pack("query", results, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(packed.Snippets) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(packed.Snippets))
	}
	for i, want := range []string{"first", "second", "third"} {
		if !strings.HasPrefix(packed.Snippets[i].Text, want) {
			t.Errorf("snippet %d = %q, want prefix %q", i, packed.Snippets[i].Text, want)
		}
	}
}

func TestPackCitations(t *testing.T) {
	u := NewPackUseCase(analyzer.NewTokenizer())

	packed, err := u.Pack("query", domain.RetrievalResult{
		scored("Alex", "cited content", "interview.md", 4, 0.9),
	}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if packed.Snippets[0].Source != "interview.md#4" {
		t.Errorf("unexpected citation: %s", packed.Snippets[0].Source)
	}
	if packed.Snippets[0].Speaker != "Alex" {
		t.Errorf("unexpected speaker: %s", packed.Snippets[0].Speaker)
	}
}

func TestPackInvalidBudget(t *testing.T) {
	u := NewPackUseCase(analyzer.NewTokenizer())

	_, err := u.Pack("query", nil, 0)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero budget, got %v", err)
	}
}

func TestPackEmptyResults(t *testing.T) {
	u := NewPackUseCase(analyzer.NewTokenizer())

	packed, err := u.Pack("query", nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(packed.Snippets) != 0 || packed.UsedTokens != 0 {
		t.Error("expected empty context for empty results")
	}
}
