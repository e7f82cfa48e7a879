// Package cache provides a Redis-backed read-through cache for generated
// insights, so repeated reads of the same analysis do not re-invoke the
// LLM. When Redis is not configured the no-op implementation is used and
// every read is a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
)

// ErrMiss indicates the insight is not cached.
var ErrMiss = errors.New("insight cache miss")

// InsightCache stores generated insight narratives keyed by analysis ID.
type InsightCache interface {
	Get(ctx context.Context, analysisID uuid.UUID) (*domain.LLMInsightOutput, error)
	Set(ctx context.Context, analysisID uuid.UUID, insight *domain.LLMInsightOutput) error
}

type redisInsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisInsightCache creates a Redis-backed insight cache with the
// given TTL.
func NewRedisInsightCache(client *redis.Client, ttl time.Duration) InsightCache {
	return &redisInsightCache{client: client, ttl: ttl}
}

func insightKey(analysisID uuid.UUID) string {
	return "insight:" + analysisID.String()
}

func (c *redisInsightCache) Get(ctx context.Context, analysisID uuid.UUID) (*domain.LLMInsightOutput, error) {
	data, err := c.client.Get(ctx, insightKey(analysisID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, err
	}

	var insight domain.LLMInsightOutput
	if err := json.Unmarshal(data, &insight); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		return nil, ErrMiss
	}
	return &insight, nil
}

func (c *redisInsightCache) Set(ctx context.Context, analysisID uuid.UUID, insight *domain.LLMInsightOutput) error {
	data, err := json.Marshal(insight)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, insightKey(analysisID), data, c.ttl).Err()
}

type nopInsightCache struct{}

// NewNopInsightCache returns a cache that never hits. Used when Redis is
// not configured.
func NewNopInsightCache() InsightCache {
	return nopInsightCache{}
}

func (nopInsightCache) Get(ctx context.Context, analysisID uuid.UUID) (*domain.LLMInsightOutput, error) {
	return nil, ErrMiss
}

func (nopInsightCache) Set(ctx context.Context, analysisID uuid.UUID, insight *domain.LLMInsightOutput) error {
	return nil
}
