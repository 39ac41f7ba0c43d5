package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-genai/server/internal/agent/model"
)

type fakeRunner struct {
	doc *model.ResponseDocument
	got model.QueryInput
}

func (f *fakeRunner) Invoke(_ context.Context, in model.QueryInput) (*model.ResponseDocument, error) {
	f.got = in
	return f.doc, nil
}

type fakeRecords map[string]model.StructuredRecord

func (f fakeRecords) Fetch(_ context.Context, name string) (model.StructuredRecord, error) {
	r, ok := f[name]
	if !ok {
		return model.StructuredRecord{}, errors.New("not found")
	}
	return r, nil
}

func TestHandleAsk(t *testing.T) {
	sprites := model.NewSpriteMap()
	sprites.Set("Squirtle", []string{"https://img/7.png"})
	sprites.Set("Psyduck", nil)
	runner := &fakeRunner{doc: &model.ResponseDocument{
		Header:     "Here you go!",
		Body:       []string{"Squirtle (#7)", "Psyduck (#54)"},
		Sprites:    sprites,
		IntentType: model.IntentSquadBuild,
	}}
	s := NewServer(runner, fakeRecords{}, "test")

	_, out, err := s.handleAsk(context.Background(), nil, AskInput{Query: "team vs onix", ConversationID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", runner.got.ConversationID)
	assert.Equal(t, "squad_build", out.IntentType)
	assert.Equal(t, []string{"Squirtle", "Psyduck"}, out.Order)
	assert.Equal(t, []string{}, out.Sprites["Psyduck"])
}

func TestHandleAskNullDocumentFields(t *testing.T) {
	s := NewServer(&fakeRunner{doc: &model.ResponseDocument{Header: "Sorry"}}, fakeRecords{}, "test")
	_, out, err := s.handleAsk(context.Background(), nil, AskInput{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Sorry", out.Header)
	assert.NotNil(t, out.Body)
	assert.NotNil(t, out.Sprites)
}

func TestHandleAskRequiresQuery(t *testing.T) {
	s := NewServer(&fakeRunner{}, fakeRecords{}, "test")
	_, _, err := s.handleAsk(context.Background(), nil, AskInput{Query: " "})
	assert.Error(t, err)
}

func TestHandleLookup(t *testing.T) {
	recs := fakeRecords{"onix": {
		ID:        95,
		Name:      "onix",
		Types:     []string{"rock", "ground"},
		Relations: model.Relations{model.DoubleDamageFrom: "water"},
		Sprites:   model.Sprites{FrontDefault: "https://img/95.png"},
	}}
	s := NewServer(&fakeRunner{}, recs, "test")

	_, out, err := s.handleLookup(context.Background(), nil, LookupInput{Name: "onix"})
	require.NoError(t, err)
	assert.Equal(t, 95, out.ID)
	assert.Equal(t, []string{}, out.Abilities)
	assert.Equal(t, []string{"https://img/95.png"}, out.Sprites)
	assert.Equal(t, map[string]string{"double_damage_from": "water"}, out.Relations)

	_, _, err = s.handleLookup(context.Background(), nil, LookupInput{Name: "missingno"})
	assert.Error(t, err)
	_, _, err = s.handleLookup(context.Background(), nil, LookupInput{})
	assert.Error(t, err)
}
