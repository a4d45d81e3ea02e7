package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"

	"personarag/internal/domain"
	"personarag/internal/index"
	"personarag/internal/port"
)

// Semantic retrieves the top-k chunks from a snapshot by blending cosine
// similarity with recency. It holds only a read reference to the
// snapshot and never mutates it.
type Semantic struct {
	embedder      port.Embedder
	minSimilarity float64
}

func New(embedder port.Embedder, minSimilarity float64) *Semantic {
	return &Semantic{
		embedder:      embedder,
		minSimilarity: minSimilarity,
	}
}

// Search embeds the query and ranks every chunk by
//
//	(1-w)*similarity + w*recency
//
// where recency is the chunk's ordinal position normalized into [0,1]
// over the whole corpus. Ties break toward the higher sequence index.
// Fewer than k matches returns all of them; k <= 0 is an invalid
// argument.
func (r *Semantic) Search(ctx context.Context, snap *index.Snapshot, q domain.Query) (domain.RetrievalResult, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, q.K)
	}
	if q.RecencyWeight < 0 || q.RecencyWeight > 1 {
		return nil, fmt.Errorf("%w: recency weight must be in [0,1], got %g", domain.ErrInvalidArgument, q.RecencyWeight)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: nil index snapshot", domain.ErrInvalidArgument)
	}

	manifest := snap.Manifest()
	if r.embedder.ModelName() != manifest.Model {
		return nil, fmt.Errorf("%w: index built with %q, query embedder is %q",
			domain.ErrConfigMismatch, manifest.Model, r.embedder.ModelName())
	}

	vectors, err := r.embedder.Embed(ctx, []string{q.Text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("query embedding returned %d vectors", len(vectors))
	}
	queryVec := vectors[0]
	if len(queryVec) != manifest.Dimension {
		return nil, fmt.Errorf("%w: query vector dimension %d, index dimension %d",
			domain.ErrConfigMismatch, len(queryVec), manifest.Dimension)
	}

	n := snap.Len()
	results := make(domain.RetrievalResult, 0, n)
	for i := 0; i < n; i++ {
		chunk := snap.Chunk(i)
		if q.Speaker != "" && chunk.Speaker != q.Speaker {
			continue
		}

		similarity := cosineSimilarity(queryVec, chunk.Embedding)
		if r.minSimilarity > 0 && similarity < r.minSimilarity {
			continue
		}

		score := (1-q.RecencyWeight)*similarity + q.RecencyWeight*normalizedRecency(i, n)
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.SequenceIndex != results[j].Chunk.SequenceIndex {
			return results[i].Chunk.SequenceIndex > results[j].Chunk.SequenceIndex
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if q.K < len(results) {
		results = results[:q.K]
	}
	return results, nil
}

// normalizedRecency scales an ordinal corpus position into [0,1]. The
// normalization always spans the whole corpus, even when a speaker
// filter narrows the candidates.
func normalizedRecency(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(i) / float64(n-1)
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
