package index

import (
	"fmt"
	"time"

	"personarag/internal/domain"
)

// Manifest records the embedding scheme and corpus identity an index was
// built with. Retrieval refuses to serve queries embedded with a
// different scheme.
type Manifest struct {
	Model             string    `json:"model"`
	Dimension         int       `json:"dimension"`
	ChunkCount        int       `json:"chunk_count"`
	BuiltAt           time.Time `json:"built_at"`
	CorpusFingerprint string    `json:"corpus_fingerprint"`
}

// Snapshot is an immutable index over a chunk corpus: every chunk
// carries exactly one embedding computed with the manifest's scheme.
// A rebuild produces a new Snapshot; existing ones are never mutated,
// so concurrent readers need no locking.
type Snapshot struct {
	manifest Manifest
	chunks   []domain.ConversationChunk
}

// NewSnapshot validates that every chunk carries an embedding of the
// manifest's dimension and freezes the corpus.
func NewSnapshot(manifest Manifest, chunks []domain.ConversationChunk) (*Snapshot, error) {
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %d (%s) has no embedding", i, c.ID)
		}
		if len(c.Embedding) != manifest.Dimension {
			return nil, fmt.Errorf("chunk %d (%s) has dimension %d, manifest says %d",
				i, c.ID, len(c.Embedding), manifest.Dimension)
		}
	}
	manifest.ChunkCount = len(chunks)

	frozen := make([]domain.ConversationChunk, len(chunks))
	copy(frozen, chunks)

	return &Snapshot{manifest: manifest, chunks: frozen}, nil
}

func (s *Snapshot) Manifest() Manifest { return s.manifest }

func (s *Snapshot) Len() int { return len(s.chunks) }

// Chunk returns the chunk at ordinal position i. Ordinal order is the
// index build order: files in walk order, chunks in reading order.
func (s *Snapshot) Chunk(i int) domain.ConversationChunk { return s.chunks[i] }

// Chunks returns the ordered chunk corpus. Callers must treat it as
// read-only.
func (s *Snapshot) Chunks() []domain.ConversationChunk { return s.chunks }
