package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
)

const ToolPokemonLookup = "pokemon_api_lookup"

// ===================================
// Pokemon Lookup Tool
// ===================================

type LookupInput struct {
	Name string `json:"name"`
}

// NewLookupTool exposes a record source as an eino tool.
func NewLookupTool(src model.RecordSource) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolPokemonLookup,
			Desc: "Useful for when you need to request information from the Pokémon API about a single Pokémon. Returns its id, base stats, height, weight, types, abilities, sprites and damage relations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": {
					Type:     schema.String,
					Desc:     "Pokémon name, e.g. pikachu or mr-mime.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *LookupInput) (*model.StructuredRecord, error) {
			if in == nil || strings.TrimSpace(in.Name) == "" {
				return nil, fmt.Errorf("name is required")
			}
			rec, err := src.Fetch(ctx, in.Name)
			if err != nil {
				return nil, err
			}
			return &rec, nil
		},
	)
}

// ToolSource fetches records by running an invokable lookup tool. Tool
// callbacks observe every call and failures are wrapped as tool errors.
type ToolSource struct {
	tool tool.InvokableTool
	name string
}

func NewToolSource(ctx context.Context, t tool.InvokableTool) (*ToolSource, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("tool info: %w", err)
	}
	return &ToolSource{tool: t, name: info.Name}, nil
}

func (s *ToolSource) Fetch(ctx context.Context, name string) (model.StructuredRecord, error) {
	args, err := json.Marshal(LookupInput{Name: name})
	if err != nil {
		return model.StructuredRecord{}, errx.WrapTool(s.name, err)
	}

	ctx = einocb.ReuseHandlers(ctx, &einocb.RunInfo{
		Name:      s.name,
		Type:      "PokemonLookup",
		Component: components.ComponentOfTool,
	})
	ctx = einocb.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: string(args)})

	out, err := s.tool.InvokableRun(ctx, string(args))
	if err != nil {
		einocb.OnError(ctx, err)
		return model.StructuredRecord{}, errx.WrapTool(s.name, err)
	}
	einocb.OnEnd(ctx, &tool.CallbackOutput{Response: out})

	var rec model.StructuredRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		return model.StructuredRecord{}, errx.WrapTool(s.name, fmt.Errorf("decode tool output: %w", err))
	}
	return rec, nil
}

var _ model.RecordSource = (*ToolSource)(nil)
