package domain

import "time"

// Activity actions recorded in the audit trail.
const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
	ActionComment       = "comment"
	ActionDeleteComment = "delete-comment"
	ActionStatusChange  = "status-change"
	ActionUpload        = "upload"
)

// ActivityEntry is an append-only audit record of a mutating action.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined presentation fields, populated by list queries only.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	TaskTitle string `json:"task_title,omitempty"`
}
