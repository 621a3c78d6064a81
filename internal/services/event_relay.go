package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/internal/infrastructure/outbox"
	"github.com/tasksphere/backend/repository"
	"github.com/tasksphere/backend/usecase"
)

// EventRelay applies task-event side effects (notification and activity log
// writes). When a write fails the event is parked in the outbox for the
// processor to retry; the error never reaches the request path.
type EventRelay struct {
	notifications repository.NotificationRepository
	activity      repository.ActivityRepository
	store         *outbox.Store
	logger        *zap.Logger
}

func NewEventRelay(
	notifications repository.NotificationRepository,
	activity repository.ActivityRepository,
	store *outbox.Store,
	logger *zap.Logger,
) *EventRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRelay{
		notifications: notifications,
		activity:      activity,
		store:         store,
		logger:        logger,
	}
}

// Emit delivers the event's side effects, falling back to the outbox.
func (r *EventRelay) Emit(ctx context.Context, event domain.TaskEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	if err := r.Apply(ctx, event); err != nil {
		r.logger.Warn("side effect delivery failed, parking event",
			zap.String("event_id", event.ID),
			zap.String("action", event.Action),
			zap.Error(err))
		r.park(event)
	}
}

// Apply writes the activity entry and, when the event asks for one, the
// notification.
func (r *EventRelay) Apply(ctx context.Context, event domain.TaskEvent) error {
	if event.WantsNotification() && r.notifications != nil {
		notification := &domain.Notification{
			ID:      event.ID,
			UserID:  event.NotifyUserID,
			Message: event.Message,
		}
		if err := r.notifications.Create(ctx, notification); err != nil {
			return err
		}
	}

	if r.activity == nil {
		return nil
	}
	entry := &domain.ActivityEntry{
		UserID:  event.ActorID,
		Action:  event.Action,
		TaskID:  event.TaskID,
		Details: event.Details,
	}
	return r.activity.Append(ctx, entry)
}

func (r *EventRelay) park(event domain.TaskEvent) {
	if r.store == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("failed to serialize event for outbox", zap.Error(err))
		return
	}
	if err := r.store.Enqueue(outbox.Item{ID: event.ID, Event: payload}); err != nil {
		r.logger.Error("failed to enqueue event", zap.String("event_id", event.ID), zap.Error(err))
	}
}

var _ usecase.EventSink = (*EventRelay)(nil)
