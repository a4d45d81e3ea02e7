package usecase

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"personarag/internal/adapter/session"
	"personarag/internal/domain"
	"personarag/internal/port"
)

//go:embed templates/persona_prompt.txt
var promptTemplates embed.FS

// ChatUseCase answers user messages in the persona's voice: it retrieves
// the persona's own past turns, packs them into a bounded prompt, and
// defers generation to the external service.
type ChatUseCase struct {
	retrieve  *RetrieveUseCase
	pack      *PackUseCase
	generator port.Generator
	sessions  *session.Store

	persona       string
	topK          int
	recencyWeight float64
	tokenBudget   int
	historyTurns  int

	tmpl *template.Template
}

func NewChatUseCase(
	retrieve *RetrieveUseCase,
	pack *PackUseCase,
	generator port.Generator,
	sessions *session.Store,
	persona string,
	topK int,
	recencyWeight float64,
	tokenBudget int,
	historyTurns int,
) (*ChatUseCase, error) {
	raw, err := promptTemplates.ReadFile("templates/persona_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("persona prompt template missing: %w", err)
	}
	tmpl, err := template.New("persona").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("persona prompt template invalid: %w", err)
	}

	if historyTurns <= 0 {
		historyTurns = 6
	}

	return &ChatUseCase{
		retrieve:      retrieve,
		pack:          pack,
		generator:     generator,
		sessions:      sessions,
		persona:       persona,
		topK:          topK,
		recencyWeight: recencyWeight,
		tokenBudget:   tokenBudget,
		historyTurns:  historyTurns,
		tmpl:          tmpl,
	}, nil
}

type promptData struct {
	Persona  string
	Snippets []domain.Snippet
	History  []session.Message
}

// Reply retrieves context for the user message, generates a persona
// reply, and appends both turns to the session.
func (u *ChatUseCase) Reply(ctx context.Context, sess *session.Session, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", fmt.Errorf("%w: empty message", domain.ErrInvalidArgument)
	}

	results, err := u.retrieve.Retrieve(ctx, domain.Query{
		Text:          userMessage,
		K:             u.topK,
		RecencyWeight: u.recencyWeight,
		Speaker:       u.persona,
	})
	if err != nil {
		return "", fmt.Errorf("context retrieval failed: %w", err)
	}

	packed, err := u.pack.Pack(userMessage, results, u.tokenBudget)
	if err != nil {
		return "", err
	}

	slog.Debug("assembled persona context",
		"snippets", len(packed.Snippets),
		"used_tokens", packed.UsedTokens,
		"budget", packed.BudgetTokens)

	history := sess.Messages
	if len(history) > u.historyTurns {
		history = history[len(history)-u.historyTurns:]
	}

	var systemPrompt strings.Builder
	err = u.tmpl.Execute(&systemPrompt, promptData{
		Persona:  u.persona,
		Snippets: packed.Snippets,
		History:  history,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render persona prompt: %w", err)
	}

	reply, err := u.generator.Generate(ctx, systemPrompt.String(), userMessage)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	if err := u.sessions.Append(sess, "user", userMessage); err != nil {
		return "", fmt.Errorf("failed to persist user message: %w", err)
	}
	if err := u.sessions.Append(sess, "assistant", reply); err != nil {
		return "", fmt.Errorf("failed to persist reply: %w", err)
	}

	return reply, nil
}
