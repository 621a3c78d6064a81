package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activity_log (id, user_id, action, task_id, details)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		nullString(entry.TaskID),
		entry.Details,
	).Scan(&entry.CreatedAt)
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEntry, error) {
	const query = `
	SELECT l.id, l.user_id, l.action, l.task_id, l.details, l.created_at,
	       u.name, u.email, COALESCE(t.title, '')
	FROM activity_log l
	JOIN users u ON u.id = l.user_id
	LEFT JOIN tasks t ON t.id = l.task_id
	ORDER BY l.created_at DESC
	LIMIT $1 OFFSET $2
	`
	limit := clampLimit(filter.Limit)
	rows, err := r.pool.Query(ctx, query, limit, pageOffset(filter.Page, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var (
			entry  domain.ActivityEntry
			taskID *string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&taskID,
			&entry.Details,
			&entry.CreatedAt,
			&entry.UserName,
			&entry.UserEmail,
			&entry.TaskTitle,
		); err != nil {
			return nil, err
		}
		if taskID != nil {
			entry.TaskID = *taskID
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
