package mcpserver

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pokedex-genai/server/internal/agent/model"
)

type AskInput struct {
	Query          string `json:"query" jsonschema:"the trainer's message"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"optional id to record the turn under"`
}

type AskOutput struct {
	Header          string              `json:"header"`
	Body            []string            `json:"body"`
	Sprites         map[string][]string `json:"sprites"`
	Order           []string            `json:"order"`
	IntentType      string              `json:"intent_type"`
	IntentStructure string              `json:"intent_structure"`
}

type LookupInput struct {
	Name string `json:"name" jsonschema:"Pokémon name, e.g. pikachu"`
}

type LookupOutput struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Stats     model.Stats       `json:"stats"`
	Height    int               `json:"height"`
	Weight    int               `json:"weight"`
	Types     []string          `json:"types"`
	Abilities []string          `json:"abilities"`
	Sprites   []string          `json:"sprites"`
	Relations map[string]string `json:"damage_relations"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "ask_pokedex",
		Description: "Ask the Pokédex assistant anything: names, questions, descriptions, counters or squads",
	}, s.handleAsk)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "lookup_pokemon",
		Description: "Fetch the structured record of one Pokémon",
	}, s.handleLookup)
}

func (s *Server) handleAsk(ctx context.Context, req *sdk.CallToolRequest, input AskInput) (*sdk.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, fmt.Errorf("query is required")
	}
	doc, err := s.runner.Invoke(ctx, model.QueryInput{ConversationID: input.ConversationID, Query: input.Query})
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, askOutputFromDocument(doc), nil
}

func (s *Server) handleLookup(ctx context.Context, req *sdk.CallToolRequest, input LookupInput) (*sdk.CallToolResult, LookupOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, LookupOutput{}, fmt.Errorf("name is required")
	}
	rec, err := s.records.Fetch(ctx, input.Name)
	if err != nil {
		return nil, LookupOutput{}, err
	}
	return nil, lookupOutputFromRecord(rec), nil
}

func askOutputFromDocument(doc *model.ResponseDocument) AskOutput {
	out := AskOutput{
		Body:    []string{},
		Sprites: map[string][]string{},
		Order:   []string{},
	}
	if doc == nil {
		return out
	}
	out.Header = doc.Header
	out.IntentType = string(doc.IntentType)
	out.IntentStructure = string(doc.IntentStructure)
	if doc.Body != nil {
		out.Body = doc.Body
	}
	if doc.Sprites != nil {
		for pair := doc.Sprites.Oldest(); pair != nil; pair = pair.Next() {
			urls := pair.Value
			if urls == nil {
				urls = []string{}
			}
			out.Sprites[pair.Key] = urls
			out.Order = append(out.Order, pair.Key)
		}
	}
	return out
}

func lookupOutputFromRecord(rec model.StructuredRecord) LookupOutput {
	out := LookupOutput{
		ID:        rec.ID,
		Name:      rec.Name,
		Stats:     rec.Stats,
		Height:    rec.Height,
		Weight:    rec.Weight,
		Types:     nonNil(rec.Types),
		Abilities: nonNil(rec.Abilities),
		Sprites:   nonNil(rec.Sprites.URLs()),
		Relations: make(map[string]string, len(rec.Relations)),
	}
	for k, v := range rec.Relations {
		out.Relations[string(k)] = v
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
