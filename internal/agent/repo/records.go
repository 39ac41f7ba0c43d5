package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

// RedisRecordCache keeps structured records as JSON strings keyed by the
// lowercased entity name.
type RedisRecordCache struct {
	rdb redis.Cmdable
}

func NewRedisRecordCache(rdb redis.Cmdable) *RedisRecordCache {
	return &RedisRecordCache{rdb: rdb}
}

func (r *RedisRecordCache) recordKey(name string) string {
	return fmt.Sprintf("pokemon:%s:record", strings.ToLower(strings.TrimSpace(name)))
}

func (r *RedisRecordCache) GetRecord(ctx context.Context, name string) (model.StructuredRecord, bool, error) {
	key := r.recordKey(name)
	s, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.StructuredRecord{}, false, nil
		}
		return model.StructuredRecord{}, false, errx.WrapRedis(err)
	}

	var rec model.StructuredRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("dropping corrupt cached record")
		_ = r.rdb.Del(ctx, key).Err()
		return model.StructuredRecord{}, false, nil
	}
	return rec, true, nil
}

func (r *RedisRecordCache) SetRecord(ctx context.Context, name string, rec model.StructuredRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.rdb.Set(ctx, r.recordKey(name), b, ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}
