package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"personarag/config"
	"personarag/internal/adapter/embedding"
	"personarag/internal/port"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "personarag",
	Short: "Index interview transcripts and chat in the subject's voice",
	Long: `personarag indexes conversational transcripts into an embedding index
and retrieves the most relevant utterances to ground a persona-mimicking
chatbot.

Example usage:
  personarag index .                  # Index transcripts in the current directory
  personarag query -q "past projects" # Search indexed utterances
  personarag chat                     # Chat with the persona`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// Missing .env is fine; API keys may come from the environment.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./personarag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// newEmbedder builds the configured embedder wrapped with retries, so
// every command embeds with the same scheme and failure policy.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	var inner port.Embedder

	switch cfg.Embedding.Provider {
	case "openai":
		e, err := embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			time.Duration(cfg.Embedding.TimeoutSec)*time.Second,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		inner = e
	case "mock":
		inner = embedding.NewMockEmbedder(cfg.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	return embedding.NewRetryingEmbedder(
		inner,
		cfg.Embedding.MaxRetries,
		time.Duration(cfg.Embedding.RetryMS)*time.Millisecond,
	), nil
}
