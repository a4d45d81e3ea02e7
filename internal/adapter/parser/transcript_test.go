package parser

import (
	"reflect"
	"testing"
)

func testAliases() *AliasSet {
	return NewAliasSet(map[string][]string{
		"Alex": {"Alexey", "Alex Shulga", "Alexey Shulga"},
	})
}

func TestParseSpeakerTurns(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	text := "**Alex:** I led a RAG platform.\n\n" +
		"**John:** Tell me more.\n\n" +
		"**Alex:** It served 60000 users."

	segments := p.Parse("interview.md", text)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	wantSpeakers := []string{"Alex", "John", "Alex"}
	wantContent := []string{"I led a RAG platform.", "Tell me more.", "It served 60000 users."}
	for i, seg := range segments {
		if seg.Speaker != wantSpeakers[i] {
			t.Errorf("segment %d: expected speaker %s, got %s", i, wantSpeakers[i], seg.Speaker)
		}
		if seg.Content != wantContent[i] {
			t.Errorf("segment %d: expected content %q, got %q", i, wantContent[i], seg.Content)
		}
		if seg.SequenceIndex != i {
			t.Errorf("segment %d: expected sequence index %d, got %d", i, i, seg.SequenceIndex)
		}
		if seg.SourceFile != "interview.md" {
			t.Errorf("segment %d: unexpected source file %s", i, seg.SourceFile)
		}
	}
}

func TestParseAliasNormalization(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	text := "**Alexey Shulga:** First answer.\n\n" +
		"**alexey:** Second answer.\n\n" +
		"**Unknown Person:** A question."

	segments := p.Parse("t.md", text)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].Speaker != "Alex" || segments[1].Speaker != "Alex" {
		t.Errorf("alias variants not canonicalized: %s, %s", segments[0].Speaker, segments[1].Speaker)
	}
	if segments[2].Speaker != "Unknown Person" {
		t.Errorf("unknown speaker should keep its own name, got %s", segments[2].Speaker)
	}
}

func TestParseTimestampedMarker(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	segments := p.Parse("t.md", "**Alex (10:02):** Good morning.")
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Speaker != "Alex" {
		t.Errorf("expected Alex, got %s", segments[0].Speaker)
	}
	if segments[0].Content != "Good morning." {
		t.Errorf("unexpected content: %q", segments[0].Content)
	}
}

func TestParseMultilineTurn(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	text := "**Alex:** First paragraph.\n\nSecond paragraph of the same turn.\n\n**John:** Next turn."
	segments := p.Parse("t.md", text)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Content != "First paragraph.\n\nSecond paragraph of the same turn." {
		t.Errorf("multiline content not preserved: %q", segments[0].Content)
	}
}

func TestParseUndelimitedText(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	segments := p.Parse("t.md", "Just some prose with no speaker markers at all.\nAnother line.")
	if len(segments) != 0 {
		t.Errorf("expected zero segments for undelimited text, got %d", len(segments))
	}

	segments = p.Parse("t.md", "")
	if len(segments) != 0 {
		t.Errorf("expected zero segments for empty text, got %d", len(segments))
	}
}

func TestParseSkipsMetadata(t *testing.T) {
	p := NewTranscriptParser(testAliases())

	text := "# Interview Transcript\n\n" +
		"**Interviewer:** Date: 2024-01-15\n\n" +
		"**Alex:** A real answer.\n"

	segments := p.Parse("t.md", text)
	if len(segments) != 1 {
		t.Fatalf("expected metadata turn to be dropped, got %d segments", len(segments))
	}
	if segments[0].Content != "A real answer." {
		t.Errorf("unexpected content: %q", segments[0].Content)
	}
	if segments[0].SequenceIndex != 0 {
		t.Errorf("sequence indexes must be contiguous after filtering, got %d", segments[0].SequenceIndex)
	}
}

func TestParseDeterministic(t *testing.T) {
	p := NewTranscriptParser(testAliases())
	text := "**Alex:** One.\n\n**John:** Two.\n\n**Alex:** Three."

	first := p.Parse("t.md", text)
	second := p.Parse("t.md", text)
	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same input twice produced different segments")
	}
}
