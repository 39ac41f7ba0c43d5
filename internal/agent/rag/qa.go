package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/retriever"

	"github.com/pokedex-genai/server/internal/agent/graph/prompts"
	"github.com/pokedex-genai/server/internal/agent/model"
	"github.com/pokedex-genai/server/internal/agent/nlu"
)

// QA answers questions from retrieved chunks. The prompt makes the model
// reply with the sentinel when the context holds no answer.
type QA struct {
	retriever retriever.Retriever
	generator nlu.Generator
	topK      int
}

func NewQA(r retriever.Retriever, g nlu.Generator, topK int) *QA {
	return &QA{retriever: r, generator: g, topK: topK}
}

func (q *QA) Ask(ctx context.Context, query string) (model.RetrievalResult, error) {
	var opts []retriever.Option
	if q.topK > 0 {
		opts = append(opts, retriever.WithTopK(q.topK))
	}
	docs, err := q.retriever.Retrieve(ctx, query, opts...)
	if err != nil {
		return model.RetrievalResult{}, fmt.Errorf("retrieve context: %w", err)
	}

	passages := make([]model.Passage, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		passages = append(passages, model.Passage{
			ID:      d.ID,
			Content: d.Content,
			Source:  sourceOf(d),
			Score:   d.Score(),
		})
		texts = append(texts, d.Content)
	}

	msgs, err := prompts.RenderQA(ctx, query, strings.Join(texts, "\n\n"))
	if err != nil {
		return model.RetrievalResult{}, err
	}
	out, err := q.generator.Generate(ctx, msgs)
	if err != nil {
		return model.RetrievalResult{}, fmt.Errorf("generate answer: %w", err)
	}
	if out == nil {
		return model.RetrievalResult{}, fmt.Errorf("model returned no message")
	}

	return model.RetrievalResult{
		Question: query,
		Answer:   strings.TrimSpace(out.Content),
		Context:  passages,
	}, nil
}

var _ model.SemanticQA = (*QA)(nil)
