package nlu

import (
	"context"
	"fmt"

	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
)

// GenericAnswerer answers from the model's general knowledge.
type GenericAnswerer struct {
	model Generator
}

func NewGenericAnswerer(g Generator) *GenericAnswerer {
	return &GenericAnswerer{model: g}
}

func (a *GenericAnswerer) Answer(ctx context.Context, text string) (string, error) {
	msgs, err := prompts.RenderGeneric(ctx, text)
	if err != nil {
		return "", err
	}
	answer, err := generate(ctx, a.model, msgs)
	if err != nil {
		return "", fmt.Errorf("generic model: %w", err)
	}
	return answer, nil
}
