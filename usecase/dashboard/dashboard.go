package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

const topUserCount = 5

type UseCase struct {
	stats    repository.StatsRepository
	cache    repository.StatsCache
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func New(stats repository.StatsRepository, cache repository.StatsCache, cacheTTL time.Duration, logger *zap.Logger) *UseCase {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		stats:    stats,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Stats assembles the dashboard payload, serving a cached copy when fresh.
// Cache failures are logged and otherwise ignored.
func (uc *UseCase) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn("stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	total, err := uc.stats.TotalTasks(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := uc.stats.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := DayBounds(uc.now())
	dueToday, err := uc.stats.CountDueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	topUsers, err := uc.stats.TopAssignees(ctx, topUserCount)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalTasks:    total,
		TasksByStatus: byStatus,
		TasksDueToday: dueToday,
		TopUsers:      topUsers,
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, stats, uc.cacheTTL); err != nil {
			uc.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// DayBounds returns [start-of-day, start-of-next-day) for the reference
// moment in its own location.
func DayBounds(ref time.Time) (time.Time, time.Time) {
	year, month, day := ref.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
	return start, start.AddDate(0, 0, 1)
}
