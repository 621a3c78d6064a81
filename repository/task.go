package repository

import (
	"context"
	"time"

	"github.com/tasksphere/backend/domain"
)

// TaskFilter narrows task listings. MemberID selects tasks the user created
// or is assigned to; DueOn matches the calendar day of the due date.
type TaskFilter struct {
	MemberID   string
	Status     string
	TitleQuery string
	DueOn      *time.Time
	Page       int
	Limit      int
}

type TaskRepository interface {
	// GetByID loads a task with its comments and attachments.
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// CreateMany inserts all drafts in a single transaction.
	CreateMany(ctx context.Context, tasks []*domain.Task) ([]domain.Task, error)
	// Update persists the task only when expectedVersion matches the stored
	// row, returning domain.ErrStaleVersion otherwise.
	Update(ctx context.Context, task *domain.Task, expectedVersion int) error
	// TransitionStatus flips status conditionally on the current value so a
	// concurrent transition cannot be overwritten.
	TransitionStatus(ctx context.Context, id, from, to string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	AddComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, taskID, commentID string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, taskID, commentID string) error

	AddAttachment(ctx context.Context, attachment *domain.Attachment) error
}
