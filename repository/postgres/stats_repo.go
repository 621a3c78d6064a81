package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns a Postgres-backed StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) TotalTasks(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

func (r *statsRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	const query = `
	SELECT status, COUNT(*)
	FROM tasks
	GROUP BY status
	ORDER BY status
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *statsRepository) CountDueBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE due_date >= $1 AND due_date < $2`
	var count int
	err := r.pool.QueryRow(ctx, query, from, to).Scan(&count)
	return count, err
}

func (r *statsRepository) TopAssignees(ctx context.Context, limit int) ([]domain.AssigneeCount, error) {
	const query = `
	SELECT u.id, u.name, u.email, COUNT(*) AS task_count
	FROM tasks t
	JOIN users u ON u.id = t.assigned_to
	WHERE t.assigned_to IS NOT NULL
	GROUP BY u.id, u.name, u.email
	ORDER BY task_count DESC, u.name
	LIMIT $1
	`
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []domain.AssigneeCount
	for rows.Next() {
		var ac domain.AssigneeCount
		if err := rows.Scan(&ac.UserID, &ac.Name, &ac.Email, &ac.TaskCount); err != nil {
			return nil, err
		}
		top = append(top, ac)
	}
	return top, rows.Err()
}
