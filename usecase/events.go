package usecase

import (
	"context"

	"github.com/tasksphere/backend/domain"
)

// EventSink receives task events whose side effects (notifications, activity
// log entries) must not fail the primary mutation. Implementations absorb
// delivery errors rather than returning them to the caller.
type EventSink interface {
	Emit(ctx context.Context, event domain.TaskEvent)
}
