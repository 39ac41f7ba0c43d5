package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/indexer"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterShortTextIsOneChunk(t *testing.T) {
	chunks := NewSplitter().Split("  Pikachu is an Electric-type Pokémon.  ")
	assert.Equal(t, []string{"Pikachu is an Electric-type Pokémon."}, chunks)
}

func TestSplitterBlankText(t *testing.T) {
	assert.Nil(t, NewSplitter().Split(" \n\n\t "))
}

func TestSplitterRespectsChunkSize(t *testing.T) {
	s := &Splitter{ChunkSize: 40, ChunkOverlap: 10, Separators: defaultSeparators}
	words := strings.Repeat("thunder shock ", 30)
	text := "Pikachu\n\n" + words + "\n\nRaichu evolves from Pikachu."

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, runes(c), 40, c)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
	assert.Equal(t, "Pikachu", chunks[0])
	assert.Equal(t, "Raichu evolves from Pikachu.", chunks[len(chunks)-1])
}

func TestSplitterOverlapsNeighbours(t *testing.T) {
	s := &Splitter{ChunkSize: 20, ChunkOverlap: 8, Separators: defaultSeparators}
	chunks := s.Split("aaaa bbbb cccc dddd eeee ffff gggg")

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "aaaa bbbb cccc dddd", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "dddd"), chunks[1])
}

func TestSplitterFallsBackToCharacters(t *testing.T) {
	s := &Splitter{ChunkSize: 5, ChunkOverlap: 0, Separators: defaultSeparators}
	assert.Equal(t, []string{"abcde", "fghij", "k"}, s.Split("abcdefghijk"))
}

type fakeRetriever struct {
	docs  []*schema.Document
	err   error
	query string
	topK  int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	f.query = query
	o := retriever.GetCommonOptions(&retriever.Options{}, opts...)
	if o.TopK != nil {
		f.topK = *o.TopK
	}
	return f.docs, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeGenerator) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.seen = in
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func TestQAAsk(t *testing.T) {
	r := &fakeRetriever{docs: []*schema.Document{
		(&schema.Document{ID: "1", Content: "Pikachu is yellow.", MetaData: map[string]any{MetaSource: "pikachu.txt"}}).WithScore(0.9),
		{ID: "2", Content: "Pikachu evolves into Raichu."},
	}}
	g := &fakeGenerator{reply: "  Pikachu is yellow.\n"}

	res, err := NewQA(r, g, 3).Ask(context.Background(), "What color is Pikachu?")
	require.NoError(t, err)

	assert.Equal(t, "What color is Pikachu?", r.query)
	assert.Equal(t, 3, r.topK)
	assert.Equal(t, "Pikachu is yellow.", res.Answer)
	require.Len(t, res.Context, 2)
	assert.Equal(t, "pikachu.txt", res.Context[0].Source)
	assert.InDelta(t, 0.9, res.Context[0].Score, 1e-9)

	require.NotEmpty(t, g.seen)
	prompt := g.seen[len(g.seen)-1].Content
	assert.Contains(t, prompt, "What color is Pikachu?")
	assert.Contains(t, prompt, "Pikachu is yellow.\n\nPikachu evolves into Raichu.")
}

func TestQAErrors(t *testing.T) {
	_, err := NewQA(&fakeRetriever{err: errors.New("db down")}, &fakeGenerator{}, 0).Ask(context.Background(), "q")
	assert.Error(t, err)

	_, err = NewQA(&fakeRetriever{}, &fakeGenerator{err: errors.New("quota")}, 0).Ask(context.Background(), "q")
	assert.Error(t, err)
}

type memIndexer struct {
	docs []*schema.Document
	err  error
}

func (m *memIndexer) Store(_ context.Context, docs []*schema.Document, _ ...indexer.Option) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		m.docs = append(m.docs, d)
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func TestIndexDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pikachu.txt"), []byte("Pikachu is an electric mouse."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.md"), []byte("  \n "), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("binary"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gen1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen1", "onix.md"), []byte("Onix is a rock snake."), 0o600))

	store := &memIndexer{}
	n, err := NewIndexer(store, nil).IndexDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sources := []string{sourceOf(store.docs[0]), sourceOf(store.docs[1])}
	assert.ElementsMatch(t, []string{"pikachu.txt", "gen1/onix.md"}, sources)
	assert.Equal(t, ChunkID("pikachu.txt", "Pikachu is an electric mouse."), store.docs[1].ID)
}

func TestIndexDirStoreError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("text"), 0o600))

	_, err := NewIndexer(&memIndexer{err: errors.New("db down")}, nil).IndexDir(context.Background(), dir)
	assert.Error(t, err)
}

func TestChunkIDIsStable(t *testing.T) {
	assert.Equal(t, ChunkID("a", "b"), ChunkID("a", "b"))
	assert.NotEqual(t, ChunkID("a", "b"), ChunkID("ab", ""))
}
