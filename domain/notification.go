package domain

import "time"

// Notification is a per-user message generated by task events.
// The read flag only ever flips through the dedicated endpoint.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
