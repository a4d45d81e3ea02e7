package port

import "personarag/internal/domain"

// Parser extracts speaker-attributed segments from raw transcript text.
// Malformed or undelimited text yields zero segments, never an error.
type Parser interface {
	Parse(sourceFile, text string) []domain.Segment
}
