package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openquiz/quiz-service/internal/repositories"
	"github.com/openquiz/quiz-service/internal/utils"
	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "quiz:leaderboard:top"

// LeaderboardCache caches the leaderboard projection between submissions.
// Get returns (nil, nil) on a miss; Invalidate is called after every
// recorded result.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]repositories.LeaderboardEntry, error)
	Set(ctx context.Context, entries []repositories.LeaderboardEntry, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type redisLeaderboardCache struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisLeaderboardCache(client *redis.Client, logger utils.Logger) LeaderboardCache {
	return &redisLeaderboardCache{
		client: client,
		logger: logger,
	}
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]repositories.LeaderboardEntry, error) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var entries []repositories.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.Warn("Dropping unreadable leaderboard cache entry", "error", err)
		_ = c.client.Del(ctx, leaderboardKey).Err()
		return nil, nil
	}
	return entries, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, entries []repositories.LeaderboardEntry, ttl time.Duration) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	return c.client.Set(ctx, leaderboardKey, data, ttl).Err()
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, leaderboardKey).Err()
}

// noopLeaderboardCache is used when no redis is configured: every read is a
// miss and writes are discarded.
type noopLeaderboardCache struct{}

func NewNoopLeaderboardCache() LeaderboardCache {
	return noopLeaderboardCache{}
}

func (noopLeaderboardCache) Get(ctx context.Context) ([]repositories.LeaderboardEntry, error) {
	return nil, nil
}

func (noopLeaderboardCache) Set(ctx context.Context, entries []repositories.LeaderboardEntry, ttl time.Duration) error {
	return nil
}

func (noopLeaderboardCache) Invalidate(ctx context.Context) error {
	return nil
}
