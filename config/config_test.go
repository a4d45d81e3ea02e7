package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunk.MaxTokens != 512 {
		t.Errorf("expected MaxTokens=512, got %d", cfg.Chunk.MaxTokens)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected embedding model: %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Embedding.MaxRetries)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.RecencyWeight < 0 || cfg.Retrieve.RecencyWeight > 1 {
		t.Errorf("default recency weight out of range: %f", cfg.Retrieve.RecencyWeight)
	}
	if cfg.Corpus.Persona == "" {
		t.Error("expected a default persona")
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "personarag.yaml")

	content := `
corpus:
  persona: Jordan
  aliases:
    Jordan: ["Jordan Lee", "JL"]
chunk:
  max_tokens: 256
retrieve:
  top_k: 10
  recency_weight: 0.3
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Corpus.Persona != "Jordan" {
		t.Errorf("expected persona Jordan, got %s", cfg.Corpus.Persona)
	}
	if len(cfg.Corpus.Aliases["Jordan"]) != 2 {
		t.Errorf("expected 2 aliases, got %d", len(cfg.Corpus.Aliases["Jordan"]))
	}
	if cfg.Chunk.MaxTokens != 256 {
		t.Errorf("expected MaxTokens=256, got %d", cfg.Chunk.MaxTokens)
	}
	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Retrieve.RecencyWeight != 0.3 {
		t.Errorf("expected RecencyWeight=0.3, got %f", cfg.Retrieve.RecencyWeight)
	}
	// Unset sections keep defaults.
	if cfg.Embedding.BatchSize != 64 {
		t.Errorf("expected default BatchSize=64, got %d", cfg.Embedding.BatchSize)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "personarag.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 7
	if err := cfg.Save(configPath); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Retrieve.TopK != 7 {
		t.Errorf("expected TopK=7 after reload, got %d", reloaded.Retrieve.TopK)
	}
}

func TestLoadFromDir_Fallback(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chunk.MaxTokens != DefaultConfig().Chunk.MaxTokens {
		t.Error("expected defaults when no config file exists")
	}
}
