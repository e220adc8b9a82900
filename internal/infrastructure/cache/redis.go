package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropofflens/dropofflens/pkg/config"
)

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Redis connected successfully")

	return client, nil
}

// ResultsCache caches serialized analysis results keyed by analysis ID.
// Completed results are immutable apart from theme edits, so entries are
// invalidated whenever an analysis is updated.
type ResultsCache interface {
	Get(ctx context.Context, analysisID string) (string, bool)
	Set(ctx context.Context, analysisID string, payload string)
	Invalidate(ctx context.Context, analysisID string)
}

type redisResultsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResultsCache creates a ResultsCache backed by Redis
func NewRedisResultsCache(client *redis.Client, ttl time.Duration) ResultsCache {
	return &redisResultsCache{client: client, ttl: ttl}
}

func resultsKey(analysisID string) string {
	return "analysis:results:" + analysisID
}

func (c *redisResultsCache) Get(ctx context.Context, analysisID string) (string, bool) {
	val, err := c.client.Get(ctx, resultsKey(analysisID)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *redisResultsCache) Set(ctx context.Context, analysisID string, payload string) {
	// Cache population is best effort; a write failure only costs a re-read
	if err := c.client.Set(ctx, resultsKey(analysisID), payload, c.ttl).Err(); err != nil {
		log.Printf("Failed to cache analysis results for %s: %v", analysisID, err)
	}
}

func (c *redisResultsCache) Invalidate(ctx context.Context, analysisID string) {
	if err := c.client.Del(ctx, resultsKey(analysisID)).Err(); err != nil {
		log.Printf("Failed to invalidate cached results for %s: %v", analysisID, err)
	}
}
