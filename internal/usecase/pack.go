package usecase

import (
	"fmt"
	"sort"

	"personarag/internal/domain"
	"personarag/internal/port"
)

// PackUseCase assembles retrieved chunks into a bounded prompt context.
type PackUseCase struct {
	tokenizer port.Tokenizer
}

func NewPackUseCase(tokenizer port.Tokenizer) *PackUseCase {
	return &PackUseCase{tokenizer: tokenizer}
}

// Pack selects chunks greedily by score-per-token until the budget is
// exhausted, then restores transcript order so the context reads as a
// conversation.
func (u *PackUseCase) Pack(query string, results domain.RetrievalResult, budget int) (domain.PromptContext, error) {
	if budget <= 0 {
		return domain.PromptContext{}, fmt.Errorf("%w: token budget must be positive, got %d", domain.ErrInvalidArgument, budget)
	}

	type rankedChunk struct {
		chunk   domain.ScoredChunk
		utility float64
		tokens  int
	}

	ranked := make([]rankedChunk, 0, len(results))
	for _, c := range results {
		tokens := u.tokenizer.CountTokens(c.Chunk.Content)
		if tokens == 0 {
			tokens = 1
		}
		ranked = append(ranked, rankedChunk{
			chunk:   c,
			utility: c.Score / float64(tokens),
			tokens:  tokens,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].utility > ranked[j].utility
	})

	selected := make([]domain.ScoredChunk, 0, len(ranked))
	usedTokens := 0
	for _, rc := range ranked {
		if usedTokens+rc.tokens > budget {
			continue
		}
		selected = append(selected, rc.chunk)
		usedTokens += rc.tokens
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Chunk.SourceFile != selected[j].Chunk.SourceFile {
			return selected[i].Chunk.SourceFile < selected[j].Chunk.SourceFile
		}
		return selected[i].Chunk.SequenceIndex < selected[j].Chunk.SequenceIndex
	})

	snippets := make([]domain.Snippet, 0, len(selected))
	for _, sc := range selected {
		snippets = append(snippets, domain.Snippet{
			Speaker: sc.Chunk.Speaker,
			Source:  fmt.Sprintf("%s#%d", sc.Chunk.SourceFile, sc.Chunk.SequenceIndex),
			Score:   sc.Score,
			Text:    sc.Chunk.Content,
		})
	}

	return domain.PromptContext{
		Query:        query,
		BudgetTokens: budget,
		UsedTokens:   usedTokens,
		Snippets:     snippets,
	}, nil
}
