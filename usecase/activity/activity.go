package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

type UseCase struct {
	log    repository.ActivityRepository
	logger *zap.Logger
}

func New(log repository.ActivityRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		log:    log,
		logger: logger,
	}
}

// List returns the audit trail, newest first. Admin only; the router guards.
func (uc *UseCase) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEntry, error) {
	return uc.log.List(ctx, filter)
}
