package repository

import (
	"context"

	"github.com/tasksphere/backend/domain"
)

type ActivityFilter struct {
	Page  int
	Limit int
}

type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	// List returns entries newest first with actor name/email and task title joined.
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityEntry, error)
}
