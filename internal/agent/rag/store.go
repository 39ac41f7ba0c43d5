package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	errx "github.com/pokedex-genai/server/internal/core/error"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// MetaSource is the document metadata key holding the source file name.
const MetaSource = "source"

const ddlChunks = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS pokedex_chunks (
    id         TEXT         PRIMARY KEY,
    source     TEXT         NOT NULL DEFAULT '',
    content    TEXT         NOT NULL,
    embedding  vector(%d)   NOT NULL,
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pokedex_chunks_embedding
    ON pokedex_chunks USING hnsw (embedding vector_cosine_ops);
`

// Store keeps embedded chunks in Postgres. It is both the eino indexer and
// retriever of the QA capability. Safe for concurrent use.
type Store struct {
	pool          *pgxpool.Pool
	docEmbedder   embedding.Embedder
	queryEmbedder embedding.Embedder
	dims          int
	topK          int
}

// StoreConfig holds the vector dimensions and default retrieval depth.
type StoreConfig struct {
	Dimensions int
	TopK       int
}

func NewStore(pool *pgxpool.Pool, docEmbedder, queryEmbedder embedding.Embedder, cfg StoreConfig) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if docEmbedder == nil || queryEmbedder == nil {
		return nil, fmt.Errorf("embedder is nil")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	return &Store{
		pool:          pool,
		docEmbedder:   docEmbedder,
		queryEmbedder: queryEmbedder,
		dims:          cfg.Dimensions,
		topK:          cfg.TopK,
	}, nil
}

// Migrate creates the pgvector extension, the chunks table and its index.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(ddlChunks, s.dims)); err != nil {
		logx.Error().Err(err).Msg("failed to migrate chunk schema")
		return errx.WrapPostgres(err)
	}
	return nil
}

// Store embeds and upserts docs. Documents without an ID get a content hash.
func (s *Store) Store(ctx context.Context, docs []*schema.Document, _ ...indexer.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.docEmbedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	const q = `
		INSERT INTO pokedex_chunks (id, source, content, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
		    source    = EXCLUDED.source,
		    content   = EXCLUDED.content,
		    embedding = EXCLUDED.embedding`

	ids := make([]string, len(docs))
	batch := &pgx.Batch{}
	for i, d := range docs {
		ids[i] = d.ID
		if ids[i] == "" {
			ids[i] = ChunkID(sourceOf(d), d.Content)
		}
		batch.Queue(q, ids[i], sourceOf(d), d.Content, pgvector.NewVector(toFloat32(vectors[i])))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		logx.Error().Err(err).Int("documents", len(docs)).Msg("failed to store chunks")
		return nil, errx.WrapPostgres(err)
	}
	return ids, nil
}

// Retrieve returns the chunks closest to query by cosine distance. The
// document score is the cosine similarity.
func (s *Store) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &s.topK}, opts...)
	topK := s.topK
	if options.TopK != nil && *options.TopK > 0 {
		topK = *options.TopK
	}

	vectors, err := s.queryEmbedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	const q = `
		SELECT id, source, content, embedding <=> $1 AS distance
		FROM   pokedex_chunks
		ORDER  BY distance
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(toFloat32(vectors[0])), topK)
	if err != nil {
		logx.Error().Err(err).Msg("failed to search chunks")
		return nil, errx.WrapPostgres(err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*schema.Document, error) {
		var (
			id, source, content string
			distance            float64
		)
		if err := row.Scan(&id, &source, &content, &distance); err != nil {
			return nil, err
		}
		d := &schema.Document{ID: id, Content: content, MetaData: map[string]any{MetaSource: source}}
		return d.WithScore(1 - distance), nil
	})
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return docs, nil
}

// ChunkID is a stable id for a chunk of a source.
func ChunkID(source, content string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + content))
	return hex.EncodeToString(sum[:16])
}

func sourceOf(d *schema.Document) string {
	if d.MetaData == nil {
		return ""
	}
	s, _ := d.MetaData[MetaSource].(string)
	return s
}

var (
	_ indexer.Indexer     = (*Store)(nil)
	_ retriever.Retriever = (*Store)(nil)
)
