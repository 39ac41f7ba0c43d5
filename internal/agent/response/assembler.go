// Package response shapes an orchestration state into the uniform response
// document. It makes no external calls.
package response

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"text/template"

	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

type Assembler struct {
	msgs   *prompts.Messages
	record *template.Template
}

func NewAssembler(msgs *prompts.Messages) (*Assembler, error) {
	if msgs == nil {
		return nil, fmt.Errorf("messages are nil")
	}
	tpl, err := template.New("record").
		Funcs(template.FuncMap{"join": strings.Join}).
		Option("missingkey=error").
		Parse(msgs.RecordTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse record template: %w", err)
	}
	return &Assembler{msgs: msgs, record: tpl}, nil
}

// Assemble builds a fresh document. Body and Sprites are both nil for error
// and no-intent turns, and otherwise share length and order.
func (a *Assembler) Assemble(s *model.OrchestrationState) *model.ResponseDocument {
	doc := &model.ResponseDocument{
		IntentType:      s.Intent.Type,
		IntentStructure: s.Intent.Structure,
	}
	if doc.IntentType == "" {
		doc.IntentType = model.IntentNone
	}
	if doc.IntentStructure == "" {
		doc.IntentStructure = model.StructureNone
	}

	switch {
	case s.Error:
		doc.Header = a.msgs.AlertNoAnswer
		return doc
	case s.NoIntent:
		doc.Header = a.msgs.BaseLLMAnswer + strings.TrimSpace(s.NLPAnswer)
		return doc
	}

	switch s.Intent.Route() {
	case model.RouteEntityNames:
		doc.Header = a.greeting()
		doc.Body, doc.Sprites = a.records(s.Primary, s.Descriptions)
	case model.RouteQuestion, model.RouteDescription:
		doc.Header = strings.TrimSpace(s.NLPAnswer) + "\n"
		doc.Body, doc.Sprites = a.records(s.Primary, nil)
	case model.RouteDefense:
		doc.Header = a.greeting()
		doc.Body, doc.Sprites = a.records(s.Secondary, nil)
	case model.RouteSquad:
		doc.Header = a.greeting()
		doc.Body, doc.Sprites = a.records(s.Tertiary, nil)
	default:
		doc.Header = a.msgs.BaseLLMAnswer + strings.TrimSpace(s.NLPAnswer)
	}
	return doc
}

// greeting is re-rolled on every call.
func (a *Assembler) greeting() string {
	return strings.TrimSpace(a.msgs.InitialResponses[rand.IntN(len(a.msgs.InitialResponses))])
}

func (a *Assembler) records(rs *model.RecordSet, descriptions *model.DescriptionSet) ([]string, *model.SpriteMap) {
	body := make([]string, 0, rs.Len())
	sprites := model.NewSpriteMap()
	rs.Each(func(name string, r model.StructuredRecord) {
		block := a.block(name, r)
		if d, ok := descriptions.Get(name); ok {
			block += "\n" + strings.TrimSpace(d.Answer)
		}
		body = append(body, block)
		sprites.Set(name, r.Sprites.URLs())
	})
	return body, sprites
}

type recordView struct {
	Name      string
	ID        int
	Stats     model.Stats
	HeightM   string
	WeightKg  string
	Types     []string
	Abilities []string
	Relations []string
}

func (a *Assembler) block(name string, r model.StructuredRecord) string {
	view := recordView{
		Name:      name,
		ID:        r.ID,
		Stats:     r.Stats,
		HeightM:   tenths(r.Height),
		WeightKg:  tenths(r.Weight),
		Types:     r.Types,
		Abilities: r.Abilities,
	}
	for _, key := range model.RelationKeys {
		if v, ok := r.Relations[key]; ok {
			view.Relations = append(view.Relations, strings.ReplaceAll(string(key), "_", " ")+": "+v)
		}
	}

	var buf bytes.Buffer
	if err := a.record.Execute(&buf, view); err != nil {
		logx.Error().Err(err).Str("pokemon", name).Msg("render record block")
		return name
	}
	return strings.TrimRight(buf.String(), "\n")
}

// tenths renders decimetres as metres and hectograms as kilograms.
func tenths(v int) string {
	return strconv.FormatFloat(float64(v)/10, 'f', -1, 64)
}
