package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"personarag/config"
	"personarag/internal/adapter/analyzer"
	"personarag/internal/adapter/cache"
	"personarag/internal/adapter/llm"
	"personarag/internal/adapter/session"
	"personarag/internal/index"
	"personarag/internal/retriever"
	"personarag/internal/usecase"
)

var (
	chatSession string
	chatPersona string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the indexed persona",
	Long: `Start an interactive chat session. Each message retrieves the persona's
most relevant transcript utterances and asks the generation model to answer
in their voice. Conversation history is persisted under
.personarag/sessions and can be resumed with --session.

Examples:
  personarag chat
  personarag chat --session 3f2a...   # Resume an earlier session
  personarag chat --persona Alex      # Override the configured persona`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id to resume")
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "persona speaker name (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	persona := cfg.Corpus.Persona
	if chatPersona != "" {
		persona = chatPersona
	}
	if persona == "" {
		return fmt.Errorf("no persona configured: set corpus.persona in personarag.yaml or pass --persona")
	}

	snap, err := loadIndex(rootDir)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	holder := index.NewHolder()
	holder.Swap(snap)

	retrieveUC := usecase.NewRetrieveUseCase(
		holder,
		retriever.New(embedder, cfg.Retrieve.MinSimilarity),
		cache.NewQueryCache(256, 5*time.Minute),
	)
	packUC := usecase.NewPackUseCase(analyzer.NewTokenizer())

	generator, err := llm.NewOpenAIGenerator(cfg.Generate.APIKeyEnv, cfg.Generate.Model, cfg.Generate.MaxTokens)
	if err != nil {
		return err
	}

	sessions, err := session.NewStore(config.SessionDir(rootDir), cfg.Generate.MaxHistory)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	var sess *session.Session
	if chatSession != "" {
		sess, err = sessions.Load(chatSession)
		if err != nil {
			return fmt.Errorf("failed to resume session: %w", err)
		}
	} else {
		sess, err = sessions.Create()
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	chatUC, err := usecase.NewChatUseCase(
		retrieveUC,
		packUC,
		generator,
		sessions,
		persona,
		cfg.Retrieve.TopK,
		cfg.Retrieve.RecencyWeight,
		cfg.Generate.TokenBudget,
		0,
	)
	if err != nil {
		return err
	}

	fmt.Printf("Chatting with %s (session %s). Type 'exit' to quit.\n\n", persona, sess.ID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		reply, err := chatUC.Reply(cmd.Context(), sess, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("%s> %s\n\n", persona, reply)
	}

	fmt.Printf("\nSession saved as %s\n", sess.ID)
	return scanner.Err()
}
