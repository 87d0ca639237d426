package app

import "context"

// PromptGenerator produces prompt text for a topic. Production deployments
// back this with a language model; the engine only consumes the text.
type PromptGenerator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// DefaultSeedTopic is used when the pool runs dry and a prompt must be seeded.
const DefaultSeedTopic = "General"

// StaticPromptGenerator always returns the same text (useful for seeding,
// tests and demos).
type StaticPromptGenerator struct {
	text string
}

func NewStaticPromptGenerator(text string) *StaticPromptGenerator {
	if text == "" {
		text = "Describe the perfect day for you. What makes it special?"
	}
	return &StaticPromptGenerator{text: text}
}

func (g *StaticPromptGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.text, nil
}
