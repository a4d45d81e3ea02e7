package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"personarag/config"
	"personarag/internal/adapter/analyzer"
	"personarag/internal/adapter/chunker"
	"personarag/internal/adapter/fs"
	"personarag/internal/adapter/parser"
	"personarag/internal/adapter/store"
	"personarag/internal/port"
	"personarag/internal/usecase"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index transcripts for retrieval",
	Long: `Parse transcripts in the specified directory, chunk them into
speaker-attributed utterances and embed them into a persistent index at
.personarag/index.db.

A second run skips the rebuild when no transcript changed since the last
build. Use --force to rebuild unconditionally.

Examples:
  personarag index .                    # Index current directory
  personarag index /path/to/transcripts # Index specific directory
  personarag index --force              # Rebuild even when up to date`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if the index is up to date")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	walker := fs.NewWalker(cfg.Corpus.Includes, cfg.Corpus.Excludes)
	dbPath := config.IndexPath(path)

	if !indexForce && indexUpToDate(dbPath, embedder, walker, path) {
		fmt.Println("Index is up to date. Use --force to rebuild.")
		return nil
	}

	tokenizer := analyzer.NewTokenizer()
	transcriptParser := parser.NewTranscriptParser(parser.NewAliasSet(cfg.Corpus.Aliases))
	turnChunker := chunker.NewTurnChunker(
		cfg.Chunk.MaxTokens,
		cfg.Chunk.MinTokens,
		cfg.Chunk.OverlapTokens,
		tokenizer,
	)

	buildUC := usecase.NewBuildUseCase(
		walker,
		transcriptParser,
		turnChunker,
		embedder,
		cfg.Embedding.BatchSize,
		cfg.Embedding.Workers,
	)

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var maxDone int

	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		// Batches finish out of order; never move the bar backwards.
		if done > maxDone {
			maxDone = done
			bar.Set(done)
		}
	}

	result, err := buildUC.Build(cmd.Context(), path, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if err := store.Save(result.Snapshot, dbPath); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files parsed:   %d\n", result.FilesParsed)
	fmt.Printf("  Files skipped:  %d\n", result.FilesSkipped)
	fmt.Printf("  Chunks created: %d\n", result.ChunksCreated)

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}

// indexUpToDate reports whether an existing index was built with the
// current embedding scheme after the last transcript modification.
// Any doubt (missing index, unreadable manifest, walk failure) counts
// as stale.
func indexUpToDate(dbPath string, embedder port.Embedder, walker port.FileWalker, root string) bool {
	snap, err := store.Load(dbPath)
	if err != nil {
		return false
	}

	m := snap.Manifest()
	if m.Model != embedder.ModelName() || m.Dimension != embedder.Dimension() {
		return false
	}

	files, err := walker.Walk(root)
	if err != nil {
		return false
	}
	for _, f := range files {
		if f.ModTime > m.BuiltAt.Unix() {
			return false
		}
	}
	return true
}
