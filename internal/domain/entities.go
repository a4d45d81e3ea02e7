package domain

// Segment is a single speaker turn produced by the transcript parser.
// Speaker is always the canonical identity after alias resolution.
type Segment struct {
	Speaker       string
	Content       string
	SourceFile    string
	SequenceIndex int
}

// ConversationChunk is the retrieval unit: a token-bounded slice of a
// single speaker's contiguous utterance. Embedding is nil until the
// chunk has been indexed.
type ConversationChunk struct {
	ID            string    `json:"id"`
	Speaker       string    `json:"speaker"`
	Content       string    `json:"content"`
	SourceFile    string    `json:"source_file"`
	SequenceIndex int       `json:"sequence_index"`
	Embedding     []float32 `json:"-"`
}

// Query describes a single retrieval request.
type Query struct {
	Text          string
	K             int
	RecencyWeight float64
	// Speaker restricts results to one canonical speaker when non-empty.
	Speaker string
}

type ScoredChunk struct {
	Chunk ConversationChunk
	Score float64
}

// RetrievalResult is ordered by composite score descending; ties are
// broken by SequenceIndex descending.
type RetrievalResult []ScoredChunk

// PromptContext is the assembled, token-budgeted context handed to the
// generation layer.
type PromptContext struct {
	Query        string    `json:"query"`
	BudgetTokens int       `json:"budget_tokens"`
	UsedTokens   int       `json:"used_tokens"`
	Snippets     []Snippet `json:"snippets"`
}

// Snippet is one retrieved chunk rendered for prompt inclusion, with its
// source citation.
type Snippet struct {
	Speaker string  `json:"speaker"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}
