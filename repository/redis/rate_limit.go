package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tasksphere/backend/repository"
)

type loginLimiter struct {
	client *redislib.Client
	prefix string
	max    int
	window time.Duration
}

// NewLoginLimiter creates a fixed-window rate limiter for login attempts.
func NewLoginLimiter(client *redislib.Client, max int, window time.Duration) repository.LoginLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginLimiter{
		client: client,
		prefix: "login_attempts:",
		max:    max,
		window: window,
	}
}

func (l *loginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s%s", l.prefix, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.max), nil
}
