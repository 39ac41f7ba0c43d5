package nlu

import (
	"context"
	"fmt"

	"github.com/pokedex-genai/server/internal/agent/graph/parsers"
	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// LLMExtractor asks the entity model for the names mentioned in a text.
type LLMExtractor struct {
	model Generator
}

func NewLLMExtractor(g Generator) *LLMExtractor {
	return &LLMExtractor{model: g}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) (model.EntityList, error) {
	msgs, err := prompts.RenderEntity(ctx, text)
	if err != nil {
		return model.EntityList{}, err
	}
	content, err := generate(ctx, e.model, msgs)
	if err != nil {
		return model.EntityList{}, fmt.Errorf("entity model: %w", err)
	}
	return parsers.ParseEntities(content)
}

// FallbackExtractor consults Fallback when Primary fails or finds nothing.
type FallbackExtractor struct {
	Primary  model.EntityExtractor
	Fallback model.EntityExtractor
}

func (f FallbackExtractor) Extract(ctx context.Context, text string) (model.EntityList, error) {
	list, err := f.Primary.Extract(ctx, text)
	if err == nil && !list.Empty() {
		return list, nil
	}
	if f.Fallback == nil {
		return list, err
	}
	if err != nil {
		logx.Warn().Err(err).Msg("primary entity extractor failed, using fallback")
	}
	return f.Fallback.Extract(ctx, text)
}
