package repository

import (
	"context"
	"time"

	"github.com/tasksphere/backend/domain"
)

type StatsRepository interface {
	TotalTasks(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	// CountDueBetween counts tasks whose due date falls in [from, to).
	CountDueBetween(ctx context.Context, from, to time.Time) (int, error)
	TopAssignees(ctx context.Context, limit int) ([]domain.AssigneeCount, error)
}

// StatsCache holds a recently computed dashboard payload.
type StatsCache interface {
	Get(ctx context.Context) (*domain.DashboardStats, error)
	Set(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error
}

// LoginLimiter throttles login attempts per client key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
