package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"personarag/internal/domain"
	"personarag/internal/port"
)

// TurnChunker turns parsed speaker segments into token-bounded
// ConversationChunks. Chunks never mix speakers or source files: a turn
// longer than maxTokens is split in reading order, and adjacent turns by
// the same speaker shorter than minTokens are merged.
type TurnChunker struct {
	maxTokens int
	minTokens int
	overlap   int
	tokenizer port.Tokenizer
}

func NewTurnChunker(maxTokens, minTokens, overlap int, tokenizer port.Tokenizer) *TurnChunker {
	return &TurnChunker{
		maxTokens: maxTokens,
		minTokens: minTokens,
		overlap:   overlap,
		tokenizer: tokenizer,
	}
}

// Chunk converts segments into chunks. Identical input always yields an
// identical chunk sequence; chunk sequence indexes restart per source
// file and increase in reading order.
func (c *TurnChunker) Chunk(segments []domain.Segment) ([]domain.ConversationChunk, error) {
	merged := c.mergeShortTurns(segments)

	var chunks []domain.ConversationChunk
	seqByFile := make(map[string]int)

	for _, seg := range merged {
		for _, part := range c.splitContent(seg.Content) {
			seq := seqByFile[seg.SourceFile]
			seqByFile[seg.SourceFile] = seq + 1

			chunks = append(chunks, domain.ConversationChunk{
				ID:            chunkID(seg.SourceFile, seg.Speaker, seq),
				Speaker:       seg.Speaker,
				Content:       part,
				SourceFile:    seg.SourceFile,
				SequenceIndex: seq,
			})
		}
	}

	return chunks, nil
}

// mergeShortTurns merges a turn shorter than minTokens with its
// immediately adjacent same-speaker, same-file neighbor. Merging never
// crosses file boundaries; oversized merge results are re-split later.
func (c *TurnChunker) mergeShortTurns(segments []domain.Segment) []domain.Segment {
	if c.minTokens <= 0 {
		return segments
	}

	var out []domain.Segment
	for _, seg := range segments {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.Speaker == seg.Speaker && prev.SourceFile == seg.SourceFile &&
				(c.tokenizer.CountTokens(prev.Content) < c.minTokens ||
					c.tokenizer.CountTokens(seg.Content) < c.minTokens) {
				prev.Content = prev.Content + "\n\n" + seg.Content
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

// splitContent splits a single utterance into maxTokens-bounded parts
// with overlap tokens repeated between consecutive parts.
func (c *TurnChunker) splitContent(content string) []string {
	if c.maxTokens <= 0 || c.tokenizer.CountTokens(content) <= c.maxTokens {
		return []string{content}
	}

	words := strings.Fields(content)

	// CountTokens estimates ~1.3 tokens per word; invert to get window
	// sizes in words.
	window := int(float64(c.maxTokens) / 1.3)
	if window < 1 {
		window = 1
	}
	overlapWords := int(float64(c.overlap) / 1.3)
	if overlapWords >= window {
		overlapWords = window - 1
	}

	var parts []string
	start := 0
	for start < len(words) {
		end := start + window
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - overlapWords
	}
	return parts
}

func chunkID(sourceFile, speaker string, seq int) string {
	data := fmt.Sprintf("%s:%s:%d", sourceFile, speaker, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
