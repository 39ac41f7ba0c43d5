package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/schema"

	logx "github.com/pokedex-genai/server/pkg/logger"
)

// indexBatch bounds the documents sent to the store per call.
const indexBatch = 64

// Indexer loads text files into a document store.
type Indexer struct {
	store    indexer.Indexer
	splitter *Splitter
}

func NewIndexer(store indexer.Indexer, splitter *Splitter) *Indexer {
	if splitter == nil {
		splitter = NewSplitter()
	}
	return &Indexer{store: store, splitter: splitter}
}

// IndexDir walks dir for .txt and .md files, skipping blank ones, and
// returns the number of chunks stored.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (int, error) {
	var docs []*schema.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
		default:
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, ix.Documents(filepath.ToSlash(rel), string(data))...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ix.Index(ctx, docs)
}

// Index stores docs in batches and returns how many were stored.
func (ix *Indexer) Index(ctx context.Context, docs []*schema.Document) (int, error) {
	stored := 0
	for start := 0; start < len(docs); start += indexBatch {
		end := min(start+indexBatch, len(docs))
		ids, err := ix.store.Store(ctx, docs[start:end])
		if err != nil {
			return stored, fmt.Errorf("store chunks %d-%d: %w", start, end, err)
		}
		stored += len(ids)
		logx.Debug().Int("stored", stored).Int("total", len(docs)).Msg("indexed chunk batch")
	}
	return stored, nil
}

// Documents splits one source into chunk documents.
func (ix *Indexer) Documents(source, text string) []*schema.Document {
	if strings.TrimSpace(text) == "" {
		logx.Debug().Str("source", source).Msg("skipping blank document")
		return nil
	}
	chunks := ix.splitter.Split(text)
	docs := make([]*schema.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, &schema.Document{
			ID:       ChunkID(source, c),
			Content:  c,
			MetaData: map[string]any{MetaSource: source},
		})
	}
	return docs
}
