package parser

import (
	"regexp"
	"strings"

	"personarag/internal/domain"
)

// turnMarker matches a markdown speaker turn at the start of a line:
// "**Alex:**" or "**Alex Shulga (10:02):**", capturing the speaker name
// and the remainder of the line.
var turnMarker = regexp.MustCompile(`^\*\*([^*(]+?)(?:\s*\(([^)]*)\))?:\*\*\s*(.*)$`)

// metadataPrefixes mark paragraphs that are transcript front matter, not
// conversation content.
var metadataPrefixes = []string{
	"date:",
	"role:",
	"interviewer:",
	"candidate:",
	"duration:",
	"interview simulation",
}

// TranscriptParser extracts speaker-attributed segments from markdown
// transcripts. It is a pure function of the input text plus the alias
// configuration; malformed input degrades to zero segments.
type TranscriptParser struct {
	aliases *AliasSet
}

func NewTranscriptParser(aliases *AliasSet) *TranscriptParser {
	return &TranscriptParser{aliases: aliases}
}

// Parse splits raw transcript text into ordered speaker turns. Sequence
// indexes are 0-based and assigned after metadata filtering, so they are
// contiguous over the kept turns.
func (p *TranscriptParser) Parse(sourceFile, text string) []domain.Segment {
	var segments []domain.Segment

	var speaker string
	var content strings.Builder

	flush := func() {
		if speaker == "" {
			return
		}
		body := strings.TrimSpace(content.String())
		if body != "" && !isMetadata(body) {
			segments = append(segments, domain.Segment{
				Speaker:       p.aliases.Canonical(speaker),
				Content:       body,
				SourceFile:    sourceFile,
				SequenceIndex: len(segments),
			})
		}
		speaker = ""
		content.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if m := turnMarker.FindStringSubmatch(line); m != nil {
			flush()
			speaker = strings.TrimSpace(m[1])
			content.WriteString(m[3])
			continue
		}
		if speaker != "" {
			content.WriteString("\n")
			content.WriteString(line)
		}
		// Lines before the first turn marker (titles, front matter) are
		// dropped.
	}
	flush()

	return segments
}

// isMetadata reports whether a turn body is a header or front-matter
// paragraph rather than conversation content.
func isMetadata(content string) bool {
	lower := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(lower, "#") || strings.HasPrefix(lower, "---") {
		return true
	}
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
