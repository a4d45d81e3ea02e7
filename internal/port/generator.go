package port

import "context"

// Generator produces text completions. It is treated as an opaque remote
// service; the core only assembles its prompt.
type Generator interface {
	// Generate generates a reply given a system prompt and a user prompt.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
