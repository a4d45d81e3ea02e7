package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"personarag/config"
	"personarag/internal/adapter/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved chat sessions",
	RunE:  runSessionsList,
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete a saved chat session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsRm,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
}

func openSessionStore() (*session.Store, error) {
	cfg := GetConfig()
	return session.NewStore(config.SessionDir(GetRootDir()), cfg.Generate.MaxHistory)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := openSessionStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s  %d messages\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), len(s.Messages))
	}
	return nil
}

func runSessionsRm(cmd *cobra.Command, args []string) error {
	store, err := openSessionStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	if err := store.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
