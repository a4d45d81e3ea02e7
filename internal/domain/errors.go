package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a caller error such as a non-positive k.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfigMismatch reports querying an index with an embedder that
	// does not match the scheme the index was built with.
	ErrConfigMismatch = errors.New("embedding scheme mismatch")

	// ErrCorruptIndex reports a persisted index that could not be
	// deserialized into a consistent snapshot. The caller must rebuild
	// from the source transcripts.
	ErrCorruptIndex = errors.New("corrupt index")
)

// EmbeddingError reports an embedding-service call that failed after all
// retry attempts were exhausted. It aborts the enclosing build or query.
type EmbeddingError struct {
	Batch    int
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding batch %d failed after %d attempts: %v", e.Batch, e.Attempts, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
