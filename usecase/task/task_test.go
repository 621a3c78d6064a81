package task

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

type fakeTaskRepo struct {
	tasks    map[string]*domain.Task
	comments map[string][]domain.Comment
	nextID   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:    make(map[string]*domain.Task),
		comments: make(map[string][]domain.Comment),
	}
}

func (f *fakeTaskRepo) genID() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	copied.Comments = append([]domain.Comment(nil), f.comments[id]...)
	return &copied, nil
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range f.tasks {
		if filter.MemberID != "" && task.CreatedBy != filter.MemberID && task.AssignedTo != filter.MemberID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	task.ID = f.genID()
	task.Version = 1
	task.CreatedAt = time.Now()
	f.tasks[task.ID] = task
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) CreateMany(_ context.Context, tasks []*domain.Task) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		created, _ := f.Create(context.Background(), task)
		out = append(out, *created)
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task, expectedVersion int) error {
	stored, ok := f.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrStaleVersion
	}
	copied := *task
	copied.Version = stored.Version + 1
	f.tasks[task.ID] = &copied
	task.Version = copied.Version
	return nil
}

func (f *fakeTaskRepo) TransitionStatus(_ context.Context, id, from, to string) (*domain.Task, error) {
	stored, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if stored.Status != from {
		return nil, domain.ErrStaleVersion
	}
	stored.Status = to
	stored.Version++
	copied := *stored
	return &copied, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) DeleteMany(_ context.Context, ids []string) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := f.tasks[id]; ok {
			delete(f.tasks, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskRepo) AddComment(_ context.Context, comment *domain.Comment) error {
	comment.ID = f.genID()
	f.comments[comment.TaskID] = append(f.comments[comment.TaskID], *comment)
	return nil
}

func (f *fakeTaskRepo) GetComment(_ context.Context, taskID, commentID string) (*domain.Comment, error) {
	for _, c := range f.comments[taskID] {
		if c.ID == commentID {
			copied := c
			return &copied, nil
		}
	}
	return nil, domain.ErrCommentNotFound
}

func (f *fakeTaskRepo) DeleteComment(_ context.Context, taskID, commentID string) error {
	list := f.comments[taskID]
	for i, c := range list {
		if c.ID == commentID {
			f.comments[taskID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrCommentNotFound
}

func (f *fakeTaskRepo) AddAttachment(_ context.Context, attachment *domain.Attachment) error {
	attachment.ID = f.genID()
	return nil
}

type recordingSink struct {
	events []domain.TaskEvent
}

func (s *recordingSink) Emit(_ context.Context, event domain.TaskEvent) {
	s.events = append(s.events, event)
}

var (
	admin    = &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	creator  = &domain.User{ID: "creator-1", Role: domain.RoleUser}
	assignee = &domain.User{ID: "assignee-1", Role: domain.RoleUser}
	stranger = &domain.User{ID: "stranger-1", Role: domain.RoleUser}
)

func newTestUseCase() (*UseCase, *fakeTaskRepo, *recordingSink) {
	repo := newFakeTaskRepo()
	sink := &recordingSink{}
	return New(repo, sink, nil), repo, sink
}

func assertErrCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !domain.IsDomainError(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCreateTask(t *testing.T) {
	uc, _, sink := newTestUseCase()

	created, err := uc.CreateTask(context.Background(), creator, Draft{
		Title:      "write report",
		AssignedTo: assignee.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", created.Status, domain.StatusPending)
	}
	if created.CreatedBy != creator.ID {
		t.Errorf("created_by = %q, want %q", created.CreatedBy, creator.ID)
	}
	if created.Version != 1 {
		t.Errorf("version = %d, want 1", created.Version)
	}

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	event := sink.events[0]
	if event.Action != domain.ActionCreate {
		t.Errorf("action = %q, want %q", event.Action, domain.ActionCreate)
	}
	if event.NotifyUserID != assignee.ID {
		t.Errorf("notify = %q, want %q", event.NotifyUserID, assignee.ID)
	}
	if want := "You have been assigned a new task: write report"; event.Message != want {
		t.Errorf("message = %q, want %q", event.Message, want)
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	uc, _, sink := newTestUseCase()

	_, err := uc.CreateTask(context.Background(), creator, Draft{Title: "   "})
	assertErrCode(t, err, domain.ErrCodeInvalid)
	if len(sink.events) != 0 {
		t.Errorf("events emitted on failed create: %d", len(sink.events))
	}
}

func TestGetTaskVisibility(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t", AssignedTo: assignee.ID})

	for _, u := range []*domain.User{creator, assignee, admin} {
		if _, err := uc.GetTask(context.Background(), u, created.ID); err != nil {
			t.Errorf("GetTask as %s: %v", u.ID, err)
		}
	}

	_, err := uc.GetTask(context.Background(), stranger, created.ID)
	assertErrCode(t, err, domain.ErrCodeForbidden)
}

func TestUpdateTask(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "old"})
	sink.events = nil

	title := "new title"
	updated, err := uc.UpdateTask(context.Background(), creator, created.ID, Patch{
		Title:   &title,
		Version: created.Version,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, created.Version+1)
	}
	if len(sink.events) != 1 || sink.events[0].Action != domain.ActionUpdate {
		t.Errorf("expected one update event, got %+v", sink.events)
	}
}

func TestUpdateTaskStaleVersion(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})

	title := "racer"
	if _, err := uc.UpdateTask(context.Background(), creator, created.ID, Patch{Title: &title, Version: created.Version}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	_, err := uc.UpdateTask(context.Background(), creator, created.ID, Patch{Title: &title, Version: created.Version})
	assertErrCode(t, err, domain.ErrCodeConflict)
}

func TestUpdateTaskForbiddenForAssignee(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t", AssignedTo: assignee.ID})

	title := "hijack"
	_, err := uc.UpdateTask(context.Background(), assignee, created.ID, Patch{Title: &title, Version: created.Version})
	assertErrCode(t, err, domain.ErrCodeForbidden)
}

func TestUpdateTaskReassignmentNotifies(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "shared"})
	sink.events = nil

	next := assignee.ID
	_, err := uc.UpdateTask(context.Background(), creator, created.ID, Patch{AssignedTo: &next, Version: created.Version})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	event := sink.events[0]
	if event.NotifyUserID != assignee.ID {
		t.Errorf("notify = %q, want %q", event.NotifyUserID, assignee.ID)
	}
	if want := "A task has been assigned to you: shared"; event.Message != want {
		t.Errorf("message = %q, want %q", event.Message, want)
	}
}

func TestUpdateTaskStatusSkipRejected(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})

	status := domain.StatusCompleted
	_, err := uc.UpdateTask(context.Background(), creator, created.ID, Patch{Status: &status, Version: created.Version})
	assertErrCode(t, err, domain.ErrCodeInvalid)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(uc *UseCase, id string)
		run     func(uc *UseCase, id string) (*domain.Task, error)
		wantErr string
		want    string
	}{
		{
			name: "pending to in-progress",
			run: func(uc *UseCase, id string) (*domain.Task, error) {
				return uc.MarkInProgress(context.Background(), creator, id)
			},
			want: domain.StatusInProgress,
		},
		{
			name: "in-progress to completed",
			prepare: func(uc *UseCase, id string) {
				uc.MarkInProgress(context.Background(), creator, id)
			},
			run: func(uc *UseCase, id string) (*domain.Task, error) {
				return uc.MarkComplete(context.Background(), creator, id)
			},
			want: domain.StatusCompleted,
		},
		{
			name: "complete requires in-progress",
			run: func(uc *UseCase, id string) (*domain.Task, error) {
				return uc.MarkComplete(context.Background(), creator, id)
			},
			wantErr: "Only in-progress tasks can be marked complete",
		},
		{
			name: "in-progress requires pending",
			prepare: func(uc *UseCase, id string) {
				uc.MarkInProgress(context.Background(), creator, id)
			},
			run: func(uc *UseCase, id string) (*domain.Task, error) {
				return uc.MarkInProgress(context.Background(), creator, id)
			},
			wantErr: "Only pending tasks can be marked in progress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newTestUseCase()
			created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})
			if tt.prepare != nil {
				tt.prepare(uc, created.ID)
			}

			updated, err := tt.run(uc, created.ID)
			if tt.wantErr != "" {
				var dErr *domain.Error
				if !errors.As(err, &dErr) || dErr.Message != tt.wantErr {
					t.Fatalf("err = %v, want message %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("transition: %v", err)
			}
			if updated.Status != tt.want {
				t.Errorf("status = %q, want %q", updated.Status, tt.want)
			}
		})
	}
}

func TestTransitionForbiddenForStranger(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})

	_, err := uc.MarkInProgress(context.Background(), stranger, created.ID)
	assertErrCode(t, err, domain.ErrCodeForbidden)
}

func TestTransitionNotifiesAssignee(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "deploy", AssignedTo: assignee.ID})
	sink.events = nil

	if _, err := uc.MarkInProgress(context.Background(), creator, created.ID); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	if want := `Task "deploy" is now in progress`; sink.events[0].Message != want {
		t.Errorf("message = %q, want %q", sink.events[0].Message, want)
	}
}

func TestAddComment(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "discuss", AssignedTo: assignee.ID})
	sink.events = nil

	for i := 0; i < 3; i++ {
		comments, err := uc.AddComment(context.Background(), assignee, created.ID, fmt.Sprintf("note %d", i))
		if err != nil {
			t.Fatalf("AddComment: %v", err)
		}
		if len(comments) != i+1 {
			t.Fatalf("comments = %d, want %d", len(comments), i+1)
		}
	}

	comments, _ := uc.AddComment(context.Background(), assignee, created.ID, "final")
	for i, want := range []string{"note 0", "note 1", "note 2", "final"} {
		if comments[i].Text != want {
			t.Errorf("comments[%d] = %q, want %q", i, comments[i].Text, want)
		}
	}

	event := sink.events[0]
	if event.NotifyUserID != creator.ID {
		t.Errorf("notify = %q, want creator %q", event.NotifyUserID, creator.ID)
	}
	if want := `New comment on your task "discuss"`; event.Message != want {
		t.Errorf("message = %q, want %q", event.Message, want)
	}
}

func TestAddCommentValidation(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})

	_, err := uc.AddComment(context.Background(), creator, created.ID, "  ")
	assertErrCode(t, err, domain.ErrCodeInvalid)

	_, err = uc.AddComment(context.Background(), stranger, created.ID, "hi")
	assertErrCode(t, err, domain.ErrCodeForbidden)
}

func TestCommentOnOwnTaskSkipsNotification(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "solo"})
	sink.events = nil

	if _, err := uc.AddComment(context.Background(), creator, created.ID, "self note"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	if sink.events[0].WantsNotification() {
		t.Error("self comment should not produce a notification")
	}
}

func TestDeleteComment(t *testing.T) {
	uc, _, _ := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t", AssignedTo: assignee.ID})
	comments, _ := uc.AddComment(context.Background(), assignee, created.ID, "mine")
	commentID := comments[0].ID

	if err := uc.DeleteComment(context.Background(), creator, created.ID, commentID); err == nil {
		t.Error("creator is not the poster and not admin, delete should fail")
	} else {
		assertErrCode(t, err, domain.ErrCodeForbidden)
	}

	if err := uc.DeleteComment(context.Background(), admin, created.ID, commentID); err != nil {
		t.Errorf("admin delete: %v", err)
	}

	if err := uc.DeleteComment(context.Background(), admin, created.ID, commentID); err == nil {
		t.Error("deleting a missing comment should fail")
	}
}

func TestDeleteTask(t *testing.T) {
	uc, repo, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t", AssignedTo: assignee.ID})
	sink.events = nil

	err := uc.DeleteTask(context.Background(), assignee, created.ID)
	assertErrCode(t, err, domain.ErrCodeForbidden)

	if err := uc.DeleteTask(context.Background(), creator, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, ok := repo.tasks[created.ID]; ok {
		t.Error("task still present after delete")
	}
	if len(sink.events) != 1 || sink.events[0].Action != domain.ActionDelete {
		t.Errorf("expected one delete event, got %+v", sink.events)
	}
}

func TestBulkCreate(t *testing.T) {
	uc, _, _ := newTestUseCase()

	created, err := uc.BulkCreate(context.Background(), creator, []Draft{
		{Title: "one"},
		{Title: "two", AssignedTo: assignee.ID},
	})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d, want 2", len(created))
	}
	for _, task := range created {
		if task.CreatedBy != creator.ID {
			t.Errorf("created_by = %q, want %q", task.CreatedBy, creator.ID)
		}
		if task.Status != domain.StatusPending {
			t.Errorf("status = %q, want pending", task.Status)
		}
	}
}

func TestBulkCreateValidatesEveryDraft(t *testing.T) {
	uc, repo, _ := newTestUseCase()

	_, err := uc.BulkCreate(context.Background(), creator, []Draft{
		{Title: "ok"},
		{Title: ""},
	})
	assertErrCode(t, err, domain.ErrCodeInvalid)
	if len(repo.tasks) != 0 {
		t.Errorf("partial insert on invalid batch: %d tasks", len(repo.tasks))
	}

	_, err = uc.BulkCreate(context.Background(), creator, nil)
	assertErrCode(t, err, domain.ErrCodeInvalid)
}

func TestBulkDelete(t *testing.T) {
	uc, _, _ := newTestUseCase()
	a, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "a"})
	b, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "b"})

	deleted, err := uc.BulkDelete(context.Background(), creator, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	_, err = uc.BulkDelete(context.Background(), creator, nil)
	assertErrCode(t, err, domain.ErrCodeInvalid)
}

func TestAddAttachment(t *testing.T) {
	uc, _, sink := newTestUseCase()
	created, _ := uc.CreateTask(context.Background(), creator, Draft{Title: "t"})
	sink.events = nil

	attachments, err := uc.AddAttachment(context.Background(), creator, created.ID, "spec.pdf", "uploads/tasks/x.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	if len(attachments) != 1 || attachments[0].Filename != "spec.pdf" {
		t.Errorf("attachments = %+v", attachments)
	}

	_, err = uc.AddAttachment(context.Background(), stranger, created.ID, "x", "y", "z")
	assertErrCode(t, err, domain.ErrCodeForbidden)
}
