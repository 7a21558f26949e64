// Package cache provides an optional Redis-backed cache for search
// responses. Mutations flush it; a short TTL bounds staleness either way.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/charisk/newswire/services"
)

const keyPrefix = "newswire:search:"

// QueryCache caches SearchResults keyed by (query, limit).
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New connects to Redis at addr and returns a QueryCache.
func New(addr, password string, db int, ttl time.Duration) (*QueryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &QueryCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "query-cache"),
	}, nil
}

// Get returns a cached result for (query, limit), if present.
func (c *QueryCache) Get(ctx context.Context, query string, limit int) (services.SearchResult, bool) {
	data, err := c.client.Get(ctx, buildKey(query, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("cache get failed", "error", err)
		}
		return services.SearchResult{}, false
	}
	var result services.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "error", err)
		return services.SearchResult{}, false
	}
	return result, true
}

// Set stores a result for (query, limit). Failures are logged, never
// surfaced: the cache is best-effort.
func (c *QueryCache) Set(ctx context.Context, query string, limit int, result services.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, buildKey(query, limit), data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set failed", "error", err)
	}
}

// Flush drops all cached search responses; called after news mutations.
func (c *QueryCache) Flush(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Error("cache flush failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Error("cache scan failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *QueryCache) Close() error {
	return c.client.Close()
}

func buildKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, limit)))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}
