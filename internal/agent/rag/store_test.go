package rag

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-genai/server/pkg/postgres"
)

const testDims = 3

// keywordEmbedder maps text onto three fixed axes so nearest neighbours
// are predictable.
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		t = strings.ToLower(t)
		v := []float64{0.01, 0.01, 0.01}
		for axis, word := range []string{"electric", "rock", "water"} {
			if strings.Contains(t, word) {
				v[axis] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("POKEDEX_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POKEDEX_TEST_POSTGRES_DSN not set, skipping pgvector integration tests")
	}
	ctx := context.Background()

	pool, err := (&postgres.Config{DSN: dsn, MaxConns: 2, DialTimeout: 5}).New(ctx)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS pokedex_chunks")
	require.NoError(t, err)

	s, err := NewStore(pool, keywordEmbedder{}, keywordEmbedder{}, StoreConfig{Dimensions: testDims, TopK: 1})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docs := []*schema.Document{
		{Content: "Pikachu is an electric mouse.", MetaData: map[string]any{MetaSource: "pikachu.txt"}},
		{Content: "Onix is a rock snake.", MetaData: map[string]any{MetaSource: "onix.txt"}},
		{Content: "Squirtle is a water turtle.", MetaData: map[string]any{MetaSource: "squirtle.txt"}},
	}
	ids, err := s.Store(ctx, docs)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	// Storing again upserts.
	_, err = s.Store(ctx, docs)
	require.NoError(t, err)

	got, err := s.Retrieve(ctx, "which rock pokemon")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Onix is a rock snake.", got[0].Content)
	assert.Equal(t, "onix.txt", sourceOf(got[0]))
	assert.Greater(t, got[0].Score(), 0.9)
}

func TestNewStoreValidates(t *testing.T) {
	_, err := NewStore(nil, keywordEmbedder{}, keywordEmbedder{}, StoreConfig{Dimensions: 3})
	assert.Error(t, err)
}
