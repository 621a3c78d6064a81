package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/api/transport"
	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/internal/infrastructure/storage"
	"github.com/tasksphere/backend/pkg/httpcontext"
	"github.com/tasksphere/backend/repository"
	taskUC "github.com/tasksphere/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc    *taskUC.UseCase
	files *storage.FileStore
}

func NewTaskHandler(uc *taskUC.UseCase, files *storage.FileStore, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		files:       files,
	}
}

// @Summary Create task
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}

	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	draft, ok := h.draftFromRequest(ctx, req)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, actor, draft)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary List all tasks with filters
// @Tags tasks
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == nil {
		return
	}

	filter := repository.TaskFilter{
		Status:     string(ctx.QueryArgs().Peek("status")),
		TitleQuery: string(ctx.QueryArgs().Peek("search")),
		Page:       parseInt(string(ctx.QueryArgs().Peek("page")), 1),
		Limit:      parseInt(string(ctx.QueryArgs().Peek("limit")), 20),
	}
	if raw := string(ctx.QueryArgs().Peek("due_date")); raw != "" {
		due, err := parseDueDate(raw)
		if err != nil {
			h.respondInvalid(ctx, "invalid due_date filter")
			return
		}
		filter.DueOn = due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary List tasks the caller created or is assigned to
// @Tags tasks
// @Router /api/tasks/my [get]
func (h *TaskHandler) ListMyTasks(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListMyTasks(stdCtx, actor.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Fetch a task
// @Tags tasks
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, actor, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Update a task
// @Tags tasks
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.Version == nil {
		h.respondInvalid(ctx, "version is required")
		return
	}

	patch := taskUC.Patch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Version:     *req.Version,
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			h.respondInvalid(ctx, "invalid due_date")
			return
		}
		patch.DueDate = due
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, actor, id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, actor, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"message": "task deleted successfully",
	})
}

// @Summary Mark a pending task in progress
// @Tags tasks
// @Router /api/tasks/{id}/in-progress [patch]
func (h *TaskHandler) MarkInProgress(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.MarkInProgress)
}

// @Summary Mark an in-progress task complete
// @Tags tasks
// @Router /api/tasks/{id}/complete [patch]
func (h *TaskHandler) MarkComplete(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, h.uc.MarkComplete)
}

// @Summary Add a comment
// @Tags tasks
// @Router /api/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	var req transport.CommentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	comments, err := h.uc.AddComment(stdCtx, actor, id, req.Text)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, comments)
}

// @Summary Delete a comment
// @Tags tasks
// @Router /api/tasks/{id}/comments/{commentId} [delete]
func (h *TaskHandler) DeleteComment(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	taskID, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}
	commentID, ok := h.pathValue(ctx, "commentId")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteComment(stdCtx, actor, taskID, commentID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"message": "comment deleted successfully",
	})
}

// @Summary Upload an attachment
// @Tags tasks
// @Router /api/tasks/{id}/attachments [post]
func (h *TaskHandler) UploadAttachment(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		h.respondInvalid(ctx, "no file uploaded")
		return
	}

	saved, err := h.files.Save(header, "tasks")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	attachments, err := h.uc.AddAttachment(stdCtx, actor, id, saved.Filename, saved.Path, saved.MimeType)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"message":     "file uploaded",
		"attachments": attachments,
	})
}

// @Summary Bulk-create tasks
// @Tags tasks
// @Router /api/tasks/bulk-create [post]
func (h *TaskHandler) BulkCreate(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}

	var req transport.BulkCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	var taskReqs []transport.TaskRequest
	if len(req.Tasks) == 0 || json.Unmarshal(req.Tasks, &taskReqs) != nil {
		h.respondInvalid(ctx, "tasks should be an array")
		return
	}

	drafts := make([]taskUC.Draft, 0, len(taskReqs))
	for _, tr := range taskReqs {
		draft, ok := h.draftFromRequest(ctx, tr)
		if !ok {
			return
		}
		drafts = append(drafts, draft)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.BulkCreate(stdCtx, actor, drafts)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Bulk-delete tasks
// @Tags tasks
// @Router /api/tasks/bulk-delete [delete]
func (h *TaskHandler) BulkDelete(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}

	var req transport.BulkDeleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	var ids []string
	if len(req.IDs) == 0 || json.Unmarshal(req.IDs, &ids) != nil {
		h.respondInvalid(ctx, "ids should be an array")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.BulkDelete(stdCtx, actor, ids)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"message":       "tasks deleted",
		"deleted_count": deleted,
	})
}

func (h *TaskHandler) transition(ctx *fasthttp.RequestCtx, do func(stdCtx context.Context, actor *domain.User, id string) (*domain.Task, error)) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := do(stdCtx, actor, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

func (h *TaskHandler) draftFromRequest(ctx *fasthttp.RequestCtx, req transport.TaskRequest) (taskUC.Draft, bool) {
	draft := taskUC.Draft{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != "" {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			h.respondInvalid(ctx, "invalid due_date")
			return taskUC.Draft{}, false
		}
		draft.DueDate = due
	}
	return draft, true
}

func (h baseHandler) pathValue(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	value, _ := ctx.UserValue(name).(string)
	if value == "" {
		h.respondInvalid(ctx, "missing "+name)
		return "", false
	}
	return value, true
}

func parseDueDate(raw string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
