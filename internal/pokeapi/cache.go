package pokeapi

import (
	"context"
	"time"

	"github.com/pokedex-genai/server/internal/agent/model"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// RecordCache stores structured records by name.
type RecordCache interface {
	GetRecord(ctx context.Context, name string) (model.StructuredRecord, bool, error)
	SetRecord(ctx context.Context, name string, rec model.StructuredRecord, ttl time.Duration) error
}

// CachedSource is a read-through cache in front of a record source. Cache
// failures are logged and never fail the fetch.
type CachedSource struct {
	source model.RecordSource
	cache  RecordCache
	ttl    time.Duration
}

func NewCachedSource(source model.RecordSource, cache RecordCache, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl}
}

func (c *CachedSource) Fetch(ctx context.Context, name string) (model.StructuredRecord, error) {
	rec, ok, err := c.cache.GetRecord(ctx, name)
	if err != nil {
		logx.Warn().Err(err).Str("pokemon", name).Msg("record cache read failed")
	}
	if ok {
		return rec, nil
	}

	rec, err = c.source.Fetch(ctx, name)
	if err != nil {
		return model.StructuredRecord{}, err
	}
	if err := c.cache.SetRecord(ctx, name, rec, c.ttl); err != nil {
		logx.Warn().Err(err).Str("pokemon", name).Msg("record cache write failed")
	}
	return rec, nil
}
