package tools

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
)

type stubSource map[string]model.StructuredRecord

func (s stubSource) Fetch(_ context.Context, name string) (model.StructuredRecord, error) {
	rec, ok := s[name]
	if !ok {
		return model.StructuredRecord{}, errors.New("not found")
	}
	return rec, nil
}

func TestLookupToolInfo(t *testing.T) {
	info, err := NewLookupTool(stubSource{}).Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ToolPokemonLookup, info.Name)
}

func TestToolSourceFetch(t *testing.T) {
	src := stubSource{"Onix": {ID: 95, Name: "onix", Types: []string{"rock"}, Relations: model.Relations{model.DoubleDamageFrom: "water"}}}
	ts, err := NewToolSource(context.Background(), NewLookupTool(src))
	require.NoError(t, err)

	rec, err := ts.Fetch(context.Background(), "Onix")
	require.NoError(t, err)
	assert.Equal(t, src["Onix"], rec)
}

func TestToolSourceWrapsFailures(t *testing.T) {
	ts, err := NewToolSource(context.Background(), NewLookupTool(stubSource{}))
	require.NoError(t, err)

	_, err = ts.Fetch(context.Background(), "Missingno")
	require.Error(t, err)

	var toolErr *errx.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, ToolPokemonLookup, toolErr.Tool)
	assert.Equal(t, http.StatusBadGateway, errx.StatusOf(err))
}
