package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

const statsKey = "dashboard:stats"

type statsCache struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewStatsCache creates a Redis-backed cache for dashboard statistics.
func NewStatsCache(client *redislib.Client, ttl time.Duration) repository.StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &statsCache{client: client, ttl: ttl}
}

func (c *statsCache) Get(ctx context.Context) (*domain.DashboardStats, error) {
	result, err := c.client.Get(ctx, statsKey).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal([]byte(result), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *statsCache) Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error {
	if stats == nil {
		return domain.ErrInvalidPayload
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey, payload, ttl).Err()
}
