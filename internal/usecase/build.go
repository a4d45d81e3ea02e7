package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"personarag/internal/adapter/fs"
	"personarag/internal/domain"
	"personarag/internal/index"
	"personarag/internal/port"
)

// ProgressFunc reports embedding progress as (chunksEmbedded, totalChunks).
type ProgressFunc func(done, total int)

// BuildUseCase builds an index snapshot from a transcript corpus:
// walk, parse, chunk, then embed in bounded-parallel batches.
type BuildUseCase struct {
	walker    port.FileWalker
	parser    port.Parser
	chunker   port.Chunker
	embedder  port.Embedder
	batchSize int
	workers   int
}

func NewBuildUseCase(
	walker port.FileWalker,
	parser port.Parser,
	chunker port.Chunker,
	embedder port.Embedder,
	batchSize int,
	workers int,
) *BuildUseCase {
	if batchSize <= 0 {
		batchSize = 64
	}
	if workers <= 0 {
		workers = 4
	}
	return &BuildUseCase{
		walker:    walker,
		parser:    parser,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
		workers:   workers,
	}
}

// BuildResult reports what a build did. Parse failures degrade locally
// and are counted; embedding failures abort the build.
type BuildResult struct {
	FilesParsed   int
	FilesSkipped  int
	ChunksCreated int
	Snapshot      *index.Snapshot
	Warnings      []string
}

// Build walks root for transcripts and indexes them.
func (u *BuildUseCase) Build(ctx context.Context, root string, progress ProgressFunc) (*BuildResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk transcript directory: %w", err)
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return u.BuildFiles(ctx, paths, progress)
}

// BuildFiles indexes an explicit list of transcript files. Unreadable or
// undelimited files are skipped with a warning; the rest of the corpus
// still builds.
func (u *BuildUseCase) BuildFiles(ctx context.Context, paths []string, progress ProgressFunc) (*BuildResult, error) {
	result := &BuildResult{}

	var chunks []domain.ConversationChunk
	for _, path := range paths {
		content, err := fs.ReadFile(path)
		if err != nil {
			result.FilesSkipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s: %v", path, err))
			slog.Warn("skipping unreadable transcript", "path", path, "error", err)
			continue
		}

		segments := u.parser.Parse(path, content)
		if len(segments) == 0 {
			result.FilesSkipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped %s: no speaker turns found", path))
			slog.Warn("transcript yielded no speaker turns", "path", path)
			continue
		}

		fileChunks, err := u.chunker.Chunk(segments)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", path, err)
		}
		chunks = append(chunks, fileChunks...)
		result.FilesParsed++
	}

	slog.Info("transcripts parsed",
		"files", result.FilesParsed,
		"skipped", result.FilesSkipped,
		"chunks", len(chunks))

	if err := u.embedChunks(ctx, chunks, progress); err != nil {
		return nil, err
	}

	result.ChunksCreated = len(chunks)

	snap, err := index.NewSnapshot(index.Manifest{
		Model:             u.embedder.ModelName(),
		Dimension:         u.embedder.Dimension(),
		BuiltAt:           time.Now().UTC(),
		CorpusFingerprint: fingerprint(chunks),
	}, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble index snapshot: %w", err)
	}
	result.Snapshot = snap

	return result, nil
}

// embedChunks fills in chunk embeddings batch by batch. Batches run on a
// bounded worker pool; each writes its vectors into its own disjoint
// slice range, so completion order does not matter. A batch that fails
// after retries fails the whole build: a partially embedded index would
// hide chunks from retrieval with no signal to the caller.
func (u *BuildUseCase) embedChunks(ctx context.Context, chunks []domain.ConversationChunk, progress ProgressFunc) error {
	if len(chunks) == 0 {
		return nil
	}

	// errgroup cancels its derived context once Wait returns, so the
	// caller's context is kept separate to tell abandonment apart from
	// normal completion.
	outer := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	var done atomic.Int64
	total := len(chunks)

	for start := 0; start < total; start += u.batchSize {
		// Abandonment is checked between batches, not mid-batch.
		if err := ctx.Err(); err != nil {
			break
		}

		end := start + u.batchSize
		if end > total {
			end = total
		}
		batch := chunks[start:end]
		batchNum := start / u.batchSize

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			vectors, err := u.embedder.Embed(ctx, texts)
			if err != nil {
				return &domain.EmbeddingError{
					Batch:    batchNum,
					Attempts: attemptsOf(u.embedder),
					Err:      err,
				}
			}
			if len(vectors) != len(batch) {
				return &domain.EmbeddingError{
					Batch:    batchNum,
					Attempts: attemptsOf(u.embedder),
					Err:      fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(batch)),
				}
			}

			for i := range batch {
				batch[i].Embedding = vectors[i]
			}

			n := int(done.Add(int64(len(batch))))
			if progress != nil {
				progress(n, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return outer.Err()
}

// attemptsOf reports the configured attempt budget when the embedder is
// a retrying wrapper.
func attemptsOf(e port.Embedder) int {
	type attempter interface{ Attempts() int }
	if a, ok := e.(attempter); ok {
		return a.Attempts()
	}
	return 1
}

// fingerprint derives a stable identity for the chunk corpus from the
// ordered chunk ids.
func fingerprint(chunks []domain.ConversationChunk) string {
	h := sha256.New()
	for _, c := range chunks {
		h.Write([]byte(c.ID))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
