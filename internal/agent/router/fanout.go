package router

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// fetchRecords looks up every name concurrently. Failed lookups are logged
// and left out; the set keeps the order of names.
func (r *Router) fetchRecords(ctx context.Context, names []string) *model.RecordSet {
	type result struct {
		rec model.StructuredRecord
		ok  bool
	}
	results := make([]result, len(names))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, name := range names {
		g.Go(func() error {
			rec, err := r.caps.Records.Fetch(ctx, name)
			if err != nil {
				logx.Warn().Err(err).Str("pokemon", name).Msg("structured lookup failed")
				return nil
			}
			results[i] = result{rec: rec, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	rs := model.NewRecordSet()
	for i, name := range names {
		if results[i].ok {
			rs.Put(name, results[i].rec)
		}
	}
	return rs
}

// describe runs the per-entity description query concurrently.
func (r *Router) describe(ctx context.Context, names []string) *model.DescriptionSet {
	results := make([]model.RetrievalResult, len(names))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, name := range names {
		g.Go(func() error {
			results[i] = r.ask(ctx, r.msgs.DescriptionFor(name))
			return nil
		})
	}
	_ = g.Wait()

	ds := model.NewDescriptionSet()
	for i, name := range names {
		ds.Put(name, results[i])
	}
	return ds
}
