package domain

import "time"

// TaskEvent describes a task mutation whose side effects (notification and
// activity log entry) are applied outside the primary request path. The
// notification is skipped when NotifyUserID is empty or equals ActorID.
type TaskEvent struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ActorID      string    `json:"actor_id"`
	TaskID       string    `json:"task_id,omitempty"`
	NotifyUserID string    `json:"notify_user_id,omitempty"`
	Message      string    `json:"message,omitempty"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// WantsNotification reports whether the event should produce a notification.
func (e TaskEvent) WantsNotification() bool {
	return e.NotifyUserID != "" && e.NotifyUserID != e.ActorID
}
