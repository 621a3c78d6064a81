package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
	"github.com/tasksphere/backend/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	events usecase.EventSink
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, events usecase.EventSink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		events: events,
		logger: logger,
	}
}

// Draft carries the caller-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	DueDate     *time.Time
	AssignedTo  string
}

// Patch carries a partial update. Nil fields are left untouched. Version is
// the last-seen task version; stale values are rejected.
type Patch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	AssignedTo  *string
	Status      *string
	Version     int
}

func (uc *UseCase) CreateTask(ctx context.Context, actor *domain.User, draft Draft) (*domain.Task, error) {
	task, err := taskFromDraft(draft, actor.ID)
	if err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:       domain.ActionCreate,
		ActorID:      actor.ID,
		TaskID:       created.ID,
		NotifyUserID: created.AssignedTo,
		Message:      fmt.Sprintf("You have been assigned a new task: %s", created.Title),
		Details:      fmt.Sprintf("created task %q", created.Title),
	})
	return created, nil
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) ListMyTasks(ctx context.Context, actorID string) ([]domain.Task, error) {
	return uc.tasks.List(ctx, repository.TaskFilter{MemberID: actorID})
}

func (uc *UseCase) GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanBeSeenBy(actor) {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, actor *domain.User, id string, patch Patch) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanBeEditedBy(actor) {
		return nil, domain.NewError(domain.ErrCodeForbidden, "not authorized to update this task")
	}

	prevAssignee := task.AssignedTo
	changes, err := applyPatch(task, patch)
	if err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task, patch.Version); err != nil {
		return nil, err
	}

	event := domain.TaskEvent{
		Action:  domain.ActionUpdate,
		ActorID: actor.ID,
		TaskID:  task.ID,
		Details: fmt.Sprintf("updated %s", strings.Join(changes, ", ")),
	}
	if task.AssignedTo != "" && task.AssignedTo != prevAssignee {
		event.NotifyUserID = task.AssignedTo
		event.Message = fmt.Sprintf("A task has been assigned to you: %s", task.Title)
	}
	uc.emit(ctx, event)

	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actor *domain.User, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !task.CanBeEditedBy(actor) {
		return domain.NewError(domain.ErrCodeForbidden, "not authorized to delete this task")
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:  domain.ActionDelete,
		ActorID: actor.ID,
		TaskID:  task.ID,
		Details: fmt.Sprintf("deleted task %q", task.Title),
	})
	return nil
}

// MarkInProgress moves a pending task to in-progress.
func (uc *UseCase) MarkInProgress(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	return uc.transition(ctx, actor, id,
		domain.StatusPending, domain.StatusInProgress,
		"Only pending tasks can be marked in progress",
		`Task %q is now in progress`)
}

// MarkComplete moves an in-progress task to completed.
func (uc *UseCase) MarkComplete(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	return uc.transition(ctx, actor, id,
		domain.StatusInProgress, domain.StatusCompleted,
		"Only in-progress tasks can be marked complete",
		`Task %q has been completed`)
}

func (uc *UseCase) transition(ctx context.Context, actor *domain.User, id, from, to, rejection, messageFormat string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanBeSeenBy(actor) {
		return nil, domain.ErrForbidden
	}
	if task.Status != from {
		return nil, domain.NewError(domain.ErrCodeInvalid, rejection)
	}

	updated, err := uc.tasks.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:       domain.ActionStatusChange,
		ActorID:      actor.ID,
		TaskID:       updated.ID,
		NotifyUserID: updated.AssignedTo,
		Message:      fmt.Sprintf(messageFormat, updated.Title),
		Details:      fmt.Sprintf("status %s", to),
	})
	return updated, nil
}

// AddComment appends a comment and returns the task's comments in insertion order.
func (uc *UseCase) AddComment(ctx context.Context, actor *domain.User, taskID, text string) ([]domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "comment text is required")
	}

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeSeenBy(actor) {
		return nil, domain.ErrForbidden
	}

	comment := &domain.Comment{
		TaskID:    task.ID,
		Text:      text,
		PostedBy:  actor.ID,
		CreatedAt: time.Now(),
	}
	if err := uc.tasks.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:       domain.ActionComment,
		ActorID:      actor.ID,
		TaskID:       task.ID,
		NotifyUserID: task.CreatedBy,
		Message:      fmt.Sprintf("New comment on your task %q", task.Title),
		Details:      fmt.Sprintf("comment %q", text),
	})

	task, err = uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return task.Comments, nil
}

func (uc *UseCase) DeleteComment(ctx context.Context, actor *domain.User, taskID, commentID string) error {
	if _, err := uc.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	comment, err := uc.tasks.GetComment(ctx, taskID, commentID)
	if err != nil {
		return err
	}
	if comment.PostedBy != actor.ID && !actor.IsAdmin() {
		return domain.NewError(domain.ErrCodeForbidden, "not authorized to delete this comment")
	}

	if err := uc.tasks.DeleteComment(ctx, taskID, commentID); err != nil {
		return err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:  domain.ActionDeleteComment,
		ActorID: actor.ID,
		TaskID:  taskID,
		Details: fmt.Sprintf("deleted comment %s", commentID),
	})
	return nil
}

// AddAttachment records an already-stored file on the task and returns the
// full attachment list.
func (uc *UseCase) AddAttachment(ctx context.Context, actor *domain.User, taskID, filename, path, mimeType string) ([]domain.Attachment, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanBeSeenBy(actor) {
		return nil, domain.ErrForbidden
	}

	attachment := &domain.Attachment{
		TaskID:   task.ID,
		Filename: filename,
		Path:     path,
		MimeType: mimeType,
	}
	if err := uc.tasks.AddAttachment(ctx, attachment); err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:  domain.ActionUpload,
		ActorID: actor.ID,
		TaskID:  task.ID,
		Details: fmt.Sprintf("uploaded file %s", path),
	})

	return append(task.Attachments, *attachment), nil
}

// BulkCreate inserts every draft stamped with the actor as creator; either
// all drafts persist or none do.
func (uc *UseCase) BulkCreate(ctx context.Context, actor *domain.User, drafts []Draft) ([]domain.Task, error) {
	if len(drafts) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "tasks should be a non-empty array")
	}

	tasks := make([]*domain.Task, 0, len(drafts))
	for _, draft := range drafts {
		task, err := taskFromDraft(draft, actor.ID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	created, err := uc.tasks.CreateMany(ctx, tasks)
	if err != nil {
		return nil, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:  domain.ActionCreate,
		ActorID: actor.ID,
		Details: fmt.Sprintf("bulk-created %d tasks", len(created)),
	})
	return created, nil
}

// BulkDelete removes the listed tasks and returns the deleted count.
func (uc *UseCase) BulkDelete(ctx context.Context, actor *domain.User, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.NewError(domain.ErrCodeInvalid, "ids should be a non-empty array")
	}

	deleted, err := uc.tasks.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	uc.emit(ctx, domain.TaskEvent{
		Action:  domain.ActionDelete,
		ActorID: actor.ID,
		Details: fmt.Sprintf("bulk-deleted %d tasks", deleted),
	})
	return deleted, nil
}

func (uc *UseCase) emit(ctx context.Context, event domain.TaskEvent) {
	if uc.events == nil {
		return
	}
	uc.events.Emit(ctx, event)
}

func taskFromDraft(draft Draft, creatorID string) (*domain.Task, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	return &domain.Task{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      domain.StatusPending,
		DueDate:     draft.DueDate,
		CreatedBy:   creatorID,
		AssignedTo:  draft.AssignedTo,
	}, nil
}

func applyPatch(task *domain.Task, patch Patch) ([]string, error) {
	var changes []string

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
		}
		task.Title = *patch.Title
		changes = append(changes, "title")
	}
	if patch.Description != nil {
		task.Description = *patch.Description
		changes = append(changes, "description")
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
		changes = append(changes, "due date")
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = *patch.AssignedTo
		changes = append(changes, "assignee")
	}
	if patch.Status != nil && *patch.Status != task.Status {
		if !domain.ValidStatus(*patch.Status) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown status")
		}
		if !domain.CanTransition(task.Status, *patch.Status) {
			return nil, domain.NewError(domain.ErrCodeInvalid,
				fmt.Sprintf("cannot move task from %s to %s", task.Status, *patch.Status))
		}
		task.Status = *patch.Status
		changes = append(changes, "status")
	}

	if len(changes) == 0 {
		changes = append(changes, "nothing")
	}
	return changes, nil
}
