package domain

import "time"

// Task status values. Transitions are linear:
// pending -> in-progress -> completed.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to string) bool {
	switch to {
	case StatusInProgress:
		return from == StatusPending
	case StatusCompleted:
		return from == StatusInProgress
	}
	return false
}

// Task represents a trackable unit of work with a lifecycle status.
// Version implements optimistic concurrency: updates must present the
// last-seen value and stale writes are rejected.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedBy   string       `json:"created_by"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	Version     int          `json:"version"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// CanBeSeenBy reports whether the user may read the task.
func (t *Task) CanBeSeenBy(u *User) bool {
	if t == nil || u == nil {
		return false
	}
	return u.IsAdmin() || t.CreatedBy == u.ID || t.AssignedTo == u.ID
}

// CanBeEditedBy reports whether the user may mutate or delete the task.
func (t *Task) CanBeEditedBy(u *User) bool {
	if t == nil || u == nil {
		return false
	}
	return u.IsAdmin() || t.CreatedBy == u.ID
}

// Comment is a task comment owned by its poster.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	PostedBy  string    `json:"posted_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment records a file stored for a task.
type Attachment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
