// Package rag is the semantic QA capability: documents are split, embedded
// with Gemini and stored in pgvector; questions are answered from the top
// matching chunks.
package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"

	"github.com/pokedex-genai/server/internal/agent/model"
)

// Gemini embedding task types.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// maxEmbedBatch is the Gemini batch limit for one EmbedContent call.
const maxEmbedBatch = 100

// Embedder implements the eino embedding.Embedder over the Gemini API.
type Embedder struct {
	client   *genai.Client
	model    string
	dims     int
	taskType string
}

func NewEmbedder(client *genai.Client, cfg model.EmbeddingConfig, taskType string) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is empty")
	}
	return &Embedder{client: client, model: cfg.Model, dims: cfg.Dimensions, taskType: taskType}, nil
}

// WithTask returns a copy of the embedder for another task type.
func (e *Embedder) WithTask(taskType string) *Embedder {
	cp := *e
	cp.taskType = taskType
	return &cp
}

func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
		if e.dims > 0 {
			cfg.OutputDimensionality = genai.Ptr(int32(e.dims))
		}
		res, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini embed: got %d embeddings for %d texts", len(res.Embeddings), end-start)
		}
		for _, emb := range res.Embeddings {
			out = append(out, toFloat64(emb.Values))
		}
	}
	return out, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

var _ embedding.Embedder = (*Embedder)(nil)
