package domain

import "context"

// Generator turns a prompt into free text. Implemented by the LLM transports.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
