package refiner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/observe"
)

var testTemplates = Templates{
	Base:         "Which is the best Pokémon to fight against {pokemon_name}?",
	Instructions: "\nAnswer with a single name.\n",
}

type scriptedQA struct {
	answer  func(query string, call int) (string, error)
	queries []string
}

func (q *scriptedQA) Ask(_ context.Context, query string) (model.RetrievalResult, error) {
	q.queries = append(q.queries, query)
	a, err := q.answer(query, len(q.queries))
	if err != nil {
		return model.RetrievalResult{}, err
	}
	return model.RetrievalResult{Question: query, Answer: a}, nil
}

func newRefiner(t *testing.T, qa model.SemanticQA) *Refiner {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := observe.NewMetrics(mp)
	require.NoError(t, err)
	return New(qa, testTemplates, m)
}

func recordsOf(rels map[string]model.Relations) *model.RecordSet {
	rs := model.NewRecordSet()
	for _, name := range []string{"Onix", "Pikachu", "Gengar", "Abra"} {
		if rel, ok := rels[name]; ok {
			rs.Put(name, model.StructuredRecord{Name: strings.ToLower(name), Relations: rel})
		}
	}
	return rs
}

var rockRelations = model.Relations{
	model.DoubleDamageFrom: "water",
	model.DoubleDamageTo:   "fire",
	model.HalfDamageFrom:   "fire",
	model.HalfDamageTo:     "fighting",
	model.NoDamageTo:       "water",
}

func TestDeduplicateKeepsFirstKey(t *testing.T) {
	got := Deduplicate(rockRelations)
	assert.Equal(t, model.Relations{
		model.DoubleDamageFrom: "water",
		model.DoubleDamageTo:   "fire",
		model.HalfDamageTo:     "fighting",
	}, got)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	maps := []model.Relations{
		{},
		rockRelations,
		{model.NoDamageFrom: "ghost", model.NoDamageTo: "ghost"},
		{model.DoubleDamageFrom: "a", model.DoubleDamageTo: "b", model.HalfDamageFrom: "c", model.HalfDamageTo: "d", model.NoDamageFrom: "e", model.NoDamageTo: "f"},
	}
	for _, m := range maps {
		once := Deduplicate(m)
		assert.Equal(t, once, Deduplicate(once))
	}
}

func TestReduceUsesRawPriorityKeys(t *testing.T) {
	assert.Equal(t, model.Relations{
		model.DoubleDamageFrom: "water",
		model.NoDamageTo:       "water",
	}, Reduce(rockRelations))
	assert.Empty(t, Reduce(model.Relations{model.HalfDamageTo: "x"}))
}

func TestBuildQueryOrder(t *testing.T) {
	rel := model.Relations{
		model.NoDamageFrom:     "ghost",
		model.DoubleDamageFrom: "fighting",
		model.HalfDamageTo:     "rock",
	}
	q := testTemplates.BuildQuery("Gengar", rel, []string{"Onix", "None"})
	want := "Which is the best Pokémon to fight against GENGAR?" +
		"\nCould be a fighting type." +
		"\nCould be a rock type." +
		"\nMust NOT be a ghost type." +
		"\nAnswer with a single name." +
		"\nThe Pokémon must NOT be Onix, or None."
	assert.Equal(t, want, q)
}

func TestBuildQueryWithoutExclusions(t *testing.T) {
	q := testTemplates.BuildQuery("onix", model.Relations{}, nil)
	assert.Equal(t, "Which is the best Pokémon to fight against ONIX?\nAnswer with a single name.", q)
}

func TestSuggestFirstAttemptSucceeds(t *testing.T) {
	qa := &scriptedQA{answer: func(q string, _ int) (string, error) {
		if strings.Contains(q, "ONIX") {
			return " Squirtle. ", nil
		}
		return "Diglett", nil
	}}
	r := newRefiner(t, qa)

	got := r.Suggest(context.Background(), []string{"Onix", "Pikachu"}, recordsOf(map[string]model.Relations{
		"Onix":    rockRelations,
		"Pikachu": {model.DoubleDamageFrom: "ground"},
	}))
	assert.Equal(t, []Suggestion{
		{Opponent: "Onix", Candidate: "Squirtle", Attempts: 1},
		{Opponent: "Pikachu", Candidate: "Diglett", Attempts: 1},
	}, got)
	require.Len(t, qa.queries, 2)
	assert.Contains(t, qa.queries[1], "must NOT be Squirtle.")
}

func TestSuggestRetriesOnceWithReducedSet(t *testing.T) {
	qa := &scriptedQA{answer: func(q string, call int) (string, error) {
		if call == 1 {
			return "None", nil
		}
		return "Golduck", nil
	}}
	r := newRefiner(t, qa)

	got := r.Suggest(context.Background(), []string{"Onix"}, recordsOf(map[string]model.Relations{"Onix": rockRelations}))
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{Opponent: "Onix", Candidate: "Golduck", Attempts: 2}, got[0])

	require.Len(t, qa.queries, 2)
	assert.Contains(t, qa.queries[0], "Must NOT be a fire type.")
	assert.NotContains(t, qa.queries[1], "fire")
	assert.Contains(t, qa.queries[1], "Could be a water type.")
}

func TestSuggestAllNoneYieldsEmpty(t *testing.T) {
	qa := &scriptedQA{answer: func(string, int) (string, error) { return "None.", nil }}
	r := newRefiner(t, qa)

	opponents := []string{"Onix", "Pikachu", "Gengar"}
	got := r.Suggest(context.Background(), opponents, recordsOf(map[string]model.Relations{
		"Onix":    rockRelations,
		"Pikachu": {model.DoubleDamageFrom: "ground"},
		"Gengar":  {},
	}))
	assert.Empty(t, got)
	assert.Len(t, qa.queries, MaxAttempts*len(opponents))
}

func TestSuggestNeverRepeatsCandidate(t *testing.T) {
	qa := &scriptedQA{answer: func(string, int) (string, error) { return "Squirtle", nil }}
	r := newRefiner(t, qa)

	got := r.Suggest(context.Background(), []string{"Onix", "Pikachu", "Gengar"}, recordsOf(map[string]model.Relations{
		"Onix":    rockRelations,
		"Pikachu": rockRelations,
		"Gengar":  rockRelations,
	}))
	require.Len(t, got, 1)
	assert.Equal(t, "Squirtle", got[0].Candidate)
	assert.Len(t, qa.queries, 5)
}

func TestSuggestSkipsMissingRecordAndQAErrors(t *testing.T) {
	qa := &scriptedQA{answer: func(string, int) (string, error) { return "", errors.New("index down") }}
	r := newRefiner(t, qa)

	got := r.Suggest(context.Background(), []string{"Abra", "Onix"}, recordsOf(map[string]model.Relations{"Onix": rockRelations}))
	assert.Empty(t, got)
	assert.Len(t, qa.queries, 2)
	for _, q := range qa.queries {
		assert.Contains(t, q, "ONIX")
	}
}
