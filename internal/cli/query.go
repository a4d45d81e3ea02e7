package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"personarag/config"
	"personarag/internal/adapter/store"
	"personarag/internal/domain"
	"personarag/internal/index"
	"personarag/internal/retriever"
)

var (
	queryText    string
	queryTopK    int
	queryRecency float64
	querySpeaker string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search indexed utterances",
	Long: `Search the transcript index for the chunks most relevant to a query,
ranked by a blend of semantic similarity and recency.

Examples:
  personarag query -q "tell me about your projects"
  personarag query -q "leadership style" -k 10 --speaker Alex --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().Float64Var(&queryRecency, "recency", -1, "recency weight in [0,1] (default from config)")
	queryCmd.Flags().StringVar(&querySpeaker, "speaker", "", "only return chunks spoken by this speaker")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type queryResult struct {
	Speaker string  `json:"speaker"`
	Source  string  `json:"source"`
	Seq     int     `json:"sequence_index"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	snap, err := loadIndex(GetRootDir())
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	semantic := retriever.New(embedder, cfg.Retrieve.MinSimilarity)

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}
	recency := cfg.Retrieve.RecencyWeight
	if queryRecency >= 0 {
		recency = queryRecency
	}

	scored, err := semantic.Search(cmd.Context(), snap, domain.Query{
		Text:          queryText,
		K:             topK,
		RecencyWeight: recency,
		Speaker:       querySpeaker,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, len(scored))
	for i, s := range scored {
		results[i] = queryResult{
			Speaker: s.Chunk.Speaker,
			Source:  s.Chunk.SourceFile,
			Seq:     s.Chunk.SequenceIndex,
			Score:   s.Score,
			Text:    s.Chunk.Content,
		}
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s (%s#%d, score: %.3f) ---\n", i+1, r.Speaker, r.Source, r.Seq, r.Score)
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}

// loadIndex opens the persisted index under dir, translating the common
// failure modes into actionable messages.
func loadIndex(dir string) (snap *index.Snapshot, err error) {
	dbPath := config.IndexPath(dir)
	if _, statErr := os.Stat(dbPath); os.IsNotExist(statErr) {
		return nil, fmt.Errorf("no index found. Run 'personarag index' first")
	}

	snap, err = store.Load(dbPath)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptIndex) {
			return nil, fmt.Errorf("index is corrupt, run 'personarag index --force' to rebuild: %w", err)
		}
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	return snap, nil
}
