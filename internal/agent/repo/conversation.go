package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pokedex-genai/server/internal/agent/model"
	errx "github.com/pokedex-genai/server/internal/core/error"
	logx "github.com/pokedex-genai/server/pkg/logger"
)

type RedisConversationRepository struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	maxTurns int
}

// NewRedisConversationRepository stores turns in one redis list per
// conversation. When maxTurns is positive the list is trimmed to that length.
func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl, maxTurns: maxTurns}
}

func (r *RedisConversationRepository) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:turns", conversationID)
}

func (r *RedisConversationRepository) AppendTurn(ctx context.Context, conversationID string, turn model.Turn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.conversationKey(conversationID)

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, b)
	if r.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
	}
	// extend TTL on touch
	var expire *redis.BoolCmd
	if r.ttl > 0 {
		expire = pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push turn to redis")
		return errx.WrapRedis(err)
	}
	if expire != nil && !expire.Val() {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string, limit int) (*model.ConversationHistory, error) {
	key := r.conversationKey(conversationID)

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	rows, err := r.rdb.LRange(ctx, key, start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.ConversationHistory{ConversationID: conversationID, Turns: []model.Turn{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.Turn, 0, len(rows))
	for i, s := range rows {
		var t model.Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return &model.ConversationHistory{ConversationID: conversationID, Turns: turns}, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	key := r.conversationKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) GetTurnCount(ctx context.Context, conversationID string) (int, error) {
	key := r.conversationKey(conversationID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get turn count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
