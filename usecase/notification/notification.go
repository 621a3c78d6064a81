package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

type UseCase struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func New(notifications repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		notifications: notifications,
		logger:        logger,
	}
}

// ListMine returns the user's notifications, newest first.
func (uc *UseCase) ListMine(ctx context.Context, userID string) ([]domain.Notification, error) {
	return uc.notifications.ListByUser(ctx, userID)
}

// MarkRead flips the read flag on one of the user's notifications.
func (uc *UseCase) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	return uc.notifications.MarkRead(ctx, id, userID)
}
