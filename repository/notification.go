package repository

import (
	"context"

	"github.com/tasksphere/backend/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	// MarkRead flips the read flag; unknown id or foreign ownership both
	// surface as domain.ErrNotificationNotFound.
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
}
