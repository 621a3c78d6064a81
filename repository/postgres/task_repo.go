package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

const taskColumns = `id, title, description, status, due_date, created_by, assigned_to, version, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if task.Comments, err = r.comments(ctx, id); err != nil {
		return nil, err
	}
	if task.Attachments, err = r.attachments(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR created_by = $1 OR assigned_to = $1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR title ILIKE '%' || $3 || '%')
	  AND ($4::timestamptz IS NULL OR (due_date >= $4 AND due_date < $4 + INTERVAL '1 day'))
	ORDER BY created_at DESC
	LIMIT $5 OFFSET $6
	`
	limit := clampLimit(filter.Limit)
	rows, err := r.pool.Query(ctx, query,
		filter.MemberID,
		filter.Status,
		filter.TitleQuery,
		nullTime(filter.DueOn),
		limit,
		pageOffset(filter.Page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, due_date, created_by, assigned_to)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING version, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		nullTime(task.DueDate),
		task.CreatedBy,
		nullString(task.AssignedTo),
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) CreateMany(ctx context.Context, tasks []*domain.Task) ([]domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const query = `
	INSERT INTO tasks (id, title, description, status, due_date, created_by, assigned_to)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING version, created_at, updated_at
	`

	created := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if err := tx.QueryRow(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			task.Status,
			nullTime(task.DueDate),
			task.CreatedBy,
			nullString(task.AssignedTo),
		).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		created = append(created, *task)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task, expectedVersion int) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		status = $5,
		due_date = $6,
		assigned_to = $7,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		task.ID,
		expectedVersion,
		task.Title,
		task.Description,
		task.Status,
		nullTime(task.DueDate),
		nullString(task.AssignedTo),
	).Scan(&task.Version, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Row missing or a concurrent writer bumped the version; look once
		// more to tell the two apart.
		if _, getErr := r.GetByID(ctx, task.ID); getErr != nil {
			return getErr
		}
		return domain.ErrStaleVersion
	}
	return err
}

func (r *taskRepository) TransitionStatus(ctx context.Context, id, from, to string) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET status = $3,
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND status = $2
	RETURNING ` + taskColumns + `
	`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, from, to))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrStaleVersion
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if isInvalidID(err) {
		return domain.ErrTaskNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	const query = `DELETE FROM tasks WHERE id = ANY($1)`
	tag, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) AddComment(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_comments (id, task_id, text, posted_by, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.Text,
		comment.PostedBy,
		comment.CreatedAt,
	)
	return err
}

func (r *taskRepository) GetComment(ctx context.Context, taskID, commentID string) (*domain.Comment, error) {
	const query = `
	SELECT id, task_id, text, posted_by, created_at
	FROM task_comments
	WHERE id = $1 AND task_id = $2
	`
	var comment domain.Comment
	err := r.pool.QueryRow(ctx, query, commentID, taskID).Scan(
		&comment.ID,
		&comment.TaskID,
		&comment.Text,
		&comment.PostedBy,
		&comment.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *taskRepository) DeleteComment(ctx context.Context, taskID, commentID string) error {
	const query = `DELETE FROM task_comments WHERE id = $1 AND task_id = $2`
	tag, err := r.pool.Exec(ctx, query, commentID, taskID)
	if isInvalidID(err) {
		return domain.ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *taskRepository) AddAttachment(ctx context.Context, attachment *domain.Attachment) error {
	if attachment == nil {
		return domain.ErrInvalidPayload
	}
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_attachments (id, task_id, filename, path, mime_type)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		attachment.ID,
		attachment.TaskID,
		attachment.Filename,
		attachment.Path,
		attachment.MimeType,
	).Scan(&attachment.CreatedAt)
}

func (r *taskRepository) comments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, text, posted_by, created_at
	FROM task_comments
	WHERE task_id = $1
	ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Text, &c.PostedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *taskRepository) attachments(ctx context.Context, taskID string) ([]domain.Attachment, error) {
	const query = `
	SELECT id, task_id, filename, path, mime_type, created_at
	FROM task_attachments
	WHERE task_id = $1
	ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Filename, &a.Path, &a.MimeType, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due      *time.Time
		assigned *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&due,
		&task.CreatedBy,
		&assigned,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	if assigned != nil {
		task.AssignedTo = *assigned
	}
	return &task, nil
}
