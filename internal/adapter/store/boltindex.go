package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"personarag/internal/domain"
	"personarag/internal/index"
)

var (
	bucketManifest = []byte("manifest")
	bucketChunks   = []byte("chunks")
	bucketVectors  = []byte("vectors")
	keyManifest    = []byte("manifest")
)

// Save persists a snapshot to a bbolt file at path, replacing any
// previous contents. Chunk order is preserved through big-endian ordinal
// keys and vectors are stored as raw float32 bits, so a load yields the
// same chunk sequence and bit-identical embeddings.
func Save(snap *index.Snapshot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketManifest, bucketChunks, bucketVectors} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		manifest, err := json.Marshal(snap.Manifest())
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketManifest).Put(keyManifest, manifest); err != nil {
			return err
		}

		chunks := tx.Bucket(bucketChunks)
		vectors := tx.Bucket(bucketVectors)
		for i, chunk := range snap.Chunks() {
			key := ordinalKey(i)

			meta, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			if err := chunks.Put(key, meta); err != nil {
				return err
			}
			if err := vectors.Put(key, encodeVector(chunk.Embedding)); err != nil {
				return err
			}
		}

		return nil
	})
}

// Load reads a persisted snapshot. Any structural inconsistency reports
// domain.ErrCorruptIndex; the caller must rebuild from transcripts
// rather than serve a partially deserialized index.
func Load(path string) (*index.Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index file not readable: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptIndex, path, err)
	}
	defer db.Close()

	var manifest index.Manifest
	var chunks []domain.ConversationChunk

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketManifest)
		cb := tx.Bucket(bucketChunks)
		vb := tx.Bucket(bucketVectors)
		if mb == nil || cb == nil || vb == nil {
			return fmt.Errorf("%w: %s: missing bucket", domain.ErrCorruptIndex, path)
		}

		data := mb.Get(keyManifest)
		if data == nil {
			return fmt.Errorf("%w: %s: missing manifest", domain.ErrCorruptIndex, path)
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			return fmt.Errorf("%w: %s: manifest unreadable: %v", domain.ErrCorruptIndex, path, err)
		}

		chunks = make([]domain.ConversationChunk, 0, manifest.ChunkCount)
		return cb.ForEach(func(k, v []byte) error {
			var chunk domain.ConversationChunk
			if err := json.Unmarshal(v, &chunk); err != nil {
				return fmt.Errorf("%w: %s: chunk %x unreadable: %v", domain.ErrCorruptIndex, path, k, err)
			}

			raw := vb.Get(k)
			if raw == nil {
				return fmt.Errorf("%w: %s: chunk %s has no vector", domain.ErrCorruptIndex, path, chunk.ID)
			}
			vec, err := decodeVector(raw)
			if err != nil {
				return fmt.Errorf("%w: %s: chunk %s: %v", domain.ErrCorruptIndex, path, chunk.ID, err)
			}
			chunk.Embedding = vec

			chunks = append(chunks, chunk)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(chunks) != manifest.ChunkCount {
		return nil, fmt.Errorf("%w: %s: manifest says %d chunks, found %d",
			domain.ErrCorruptIndex, path, manifest.ChunkCount, len(chunks))
	}

	snap, err := index.NewSnapshot(manifest, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptIndex, path, err)
	}
	return snap, nil
}

// ordinalKey encodes a chunk's position as a big-endian key so bbolt's
// byte-sorted iteration preserves corpus order.
func ordinalKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

func encodeVector(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(x))
	}
	return out
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vector payload has %d bytes, not a multiple of 4", len(raw))
	}
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}
