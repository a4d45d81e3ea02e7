package port

import "personarag/internal/domain"

type Chunker interface {
	Chunk(segments []domain.Segment) ([]domain.ConversationChunk, error)
}
