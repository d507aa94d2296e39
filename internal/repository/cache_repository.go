package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/errors"
)

const resultKeyPrefix = "timetable:result:"

// ResultCacheRepository stores generation results in Redis so later polls and
// export calls can reference them by id. A nil client degrades to a no-op
// cache (every read misses).
type ResultCacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewResultCacheRepository constructs the cache repository.
func NewResultCacheRepository(client *redis.Client, logger *zap.Logger) *ResultCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCacheRepository{client: client, logger: logger}
}

// Get unmarshals the cached result for the id into dest.
func (r *ResultCacheRepository) Get(ctx context.Context, resultID string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, resultKeyPrefix+resultID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", resultID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cached result %s: %w", resultID, err)
	}
	return nil
}

// Set stores the result under its id with the given TTL. Failures are logged
// and swallowed; caching is best-effort.
func (r *ResultCacheRepository) Set(ctx context.Context, resultID string, value interface{}, ttl time.Duration) {
	if r.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("failed to marshal generation result for cache",
			zap.String("resultId", resultID), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, resultKeyPrefix+resultID, payload, ttl).Err(); err != nil {
		r.logger.Warn("failed to cache generation result",
			zap.String("resultId", resultID), zap.Error(err))
	}
}
