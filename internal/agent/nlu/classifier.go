package nlu

import (
	"context"
	"fmt"

	"github.com/pokedex-genai/server/internal/agent/graph/parsers"
	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// IntentClassifier tags user text with an intent using the tuple output format.
type IntentClassifier struct {
	model Generator
}

func NewIntentClassifier(g Generator) *IntentClassifier {
	return &IntentClassifier{model: g}
}

func (c *IntentClassifier) Classify(ctx context.Context, text string) (model.IntentTag, error) {
	msgs, err := prompts.RenderIntent(ctx, text)
	if err != nil {
		return model.IntentTag{}, err
	}
	content, err := generate(ctx, c.model, msgs)
	if err != nil {
		return model.IntentTag{}, fmt.Errorf("intent model: %w", err)
	}
	tag, err := parsers.ParseIntent(content)
	if err != nil {
		return model.IntentTag{}, err
	}
	logx.Debug().
		Str("intent_type", string(tag.Type)).
		Str("intent_structure", string(tag.Structure)).
		Msg("intent classified")
	return tag, nil
}
