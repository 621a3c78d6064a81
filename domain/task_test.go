package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to in-progress", StatusPending, StatusInProgress, true},
		{"in-progress to completed", StatusInProgress, StatusCompleted, true},
		{"pending to completed skips a step", StatusPending, StatusCompleted, false},
		{"completed to in-progress", StatusCompleted, StatusInProgress, false},
		{"in-progress to in-progress", StatusInProgress, StatusInProgress, false},
		{"completed is terminal", StatusCompleted, StatusPending, false},
		{"unknown target", StatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusInProgress, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "Pending", "IN-PROGRESS"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestTaskVisibility(t *testing.T) {
	task := &Task{ID: "t1", CreatedBy: "creator", AssignedTo: "assignee"}

	admin := &User{ID: "a1", Role: RoleAdmin}
	creator := &User{ID: "creator", Role: RoleUser}
	assignee := &User{ID: "assignee", Role: RoleUser}
	stranger := &User{ID: "other", Role: RoleUser}

	tests := []struct {
		name    string
		user    *User
		canSee  bool
		canEdit bool
	}{
		{"admin", admin, true, true},
		{"creator", creator, true, true},
		{"assignee", assignee, true, false},
		{"stranger", stranger, false, false},
		{"nil user", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := task.CanBeSeenBy(tt.user); got != tt.canSee {
				t.Errorf("CanBeSeenBy = %v, want %v", got, tt.canSee)
			}
			if got := task.CanBeEditedBy(tt.user); got != tt.canEdit {
				t.Errorf("CanBeEditedBy = %v, want %v", got, tt.canEdit)
			}
		})
	}
}

func TestTaskEventWantsNotification(t *testing.T) {
	tests := []struct {
		name  string
		event TaskEvent
		want  bool
	}{
		{"recipient differs from actor", TaskEvent{ActorID: "a", NotifyUserID: "b"}, true},
		{"no recipient", TaskEvent{ActorID: "a"}, false},
		{"self-assignment stays quiet", TaskEvent{ActorID: "a", NotifyUserID: "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.WantsNotification(); got != tt.want {
				t.Errorf("WantsNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}
