package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentTagRoute(t *testing.T) {
	tests := []struct {
		tag  IntentTag
		want Route
	}{
		{IntentTag{IntentInformationRequest, StructureEntityNameList}, RouteEntityNames},
		{IntentTag{IntentInformationRequest, StructureNaturalLanguageQuestion}, RouteQuestion},
		{IntentTag{IntentInformationRequest, StructureNaturalLanguageDescription}, RouteDescription},
		{IntentTag{IntentInformationRequest, StructureNone}, RouteNoIntent},
		{IntentTag{IntentDefenseSuggestion, StructureNone}, RouteDefense},
		{IntentTag{IntentSquadBuild, StructureEntityNameList}, RouteSquad},
		{IntentTag{IntentNone, StructureNone}, RouteNoIntent},
		{IntentTag{}, RouteNoIntent},
	}
	for _, tt := range tests {
		t.Run(string(tt.tag.Type)+"/"+string(tt.tag.Structure), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tag.Route())
		})
	}
}

func TestParseIntentLabels(t *testing.T) {
	assert.Equal(t, IntentDefenseSuggestion, ParseIntentType(" Defense_Suggestion "))
	assert.Equal(t, IntentNone, ParseIntentType("shopping"))
	assert.Equal(t, StructureEntityNameList, ParseIntentStructure("pokemon_names"))
	assert.Equal(t, StructureNaturalLanguageQuestion, ParseIntentStructure("natural_language_question"))
	assert.Equal(t, StructureNone, ParseIntentStructure(""))
}

func TestNewEntityListDeduplicates(t *testing.T) {
	l := NewEntityList("Pikachu", " pikachu", "", "Bulbasaur")
	assert.Equal(t, []string{"Pikachu", "Bulbasaur"}, l.Names())
	assert.False(t, l.Empty())
	assert.True(t, NewEntityList().Empty())
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "None", NormalizeAnswer(" None. "))
	assert.Equal(t, "Mr Mime", NormalizeAnswer("Mr. Mime!"))
	assert.True(t, IsNoAnswer("'None'\n"))
	assert.False(t, IsNoAnswer("Onix"))
}

func TestSpritesURLsKeepsSourceOrder(t *testing.T) {
	s := Sprites{FrontDefault: "f", BackDefault: "b", FrontShiny: "fs"}
	assert.Equal(t, []string{"b", "f", "fs"}, s.URLs())
}

func TestRecordSetInsertionOrder(t *testing.T) {
	rs := NewRecordSet()
	rs.Put("Zubat", StructuredRecord{Name: "zubat"})
	rs.Put("Abra", StructuredRecord{Name: "abra"})
	assert.Equal(t, []string{"Zubat", "Abra"}, rs.Names())

	b, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(b), "Zubat"), strings.Index(string(b), "Abra"))

	var nilSet *RecordSet
	assert.Equal(t, 0, nilSet.Len())
}

func TestResponseDocumentJSONNulls(t *testing.T) {
	b, err := json.Marshal(&ResponseDocument{Header: "hi", IntentType: IntentNone, IntentStructure: StructureNone})
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":"hi","body":null,"sprites":null,"intent_type":"none","intent_structure":"none"}`, string(b))

	sprites := NewSpriteMap()
	sprites.Set("Pikachu", []string{"u1"})
	doc := &ResponseDocument{Header: "h", Body: []string{"b"}, Sprites: sprites}
	b, err = json.Marshal(doc)
	require.NoError(t, err)

	var back ResponseDocument
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.HasBody())
	urls, ok := back.Sprites.Get("Pikachu")
	require.True(t, ok)
	assert.Equal(t, []string{"u1"}, urls)
}

func TestComputeCost(t *testing.T) {
	p, ok := ResolvePricing("gemini-2.5-flash")
	require.True(t, ok)
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}, p)
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 2.50, out, 1e-9)
	assert.InDelta(t, 2.80, total, 1e-9)

	_, ok = ResolvePricing("unknown")
	assert.False(t, ok)
}

