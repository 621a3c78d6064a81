package profile

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tasksphere/backend/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, _ string, _ time.Time) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &domain.User{
		ID:           "u1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	repo.users[user.ID] = user
	return user
}

func TestUpdateProfileFields(t *testing.T) {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	seedUser(t, repo, "secret1")
	uc := New(repo, nil)

	updated, err := uc.UpdateProfile(context.Background(), "u1", Update{
		Name:  "  Ada Lovelace  ",
		Email: "ADA@New.Example",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ada Lovelace" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Email != "ada@new.example" {
		t.Errorf("email = %q, want lowercased", updated.Email)
	}
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	seedUser(t, repo, "secret1")
	uc := New(repo, nil)

	_, err := uc.UpdateProfile(context.Background(), "u1", Update{
		OldPassword: "wrong",
		NewPassword: "brand-new",
	})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("wrong old password: err = %v, want INVALID", err)
	}

	_, err = uc.UpdateProfile(context.Background(), "u1", Update{
		OldPassword: "secret1",
		NewPassword: "abc",
	})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("short new password: err = %v, want INVALID", err)
	}

	updated, err := uc.UpdateProfile(context.Background(), "u1", Update{
		OldPassword: "secret1",
		NewPassword: "brand-new",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new")) != nil {
		t.Error("new password not installed")
	}
}

func TestSetAvatar(t *testing.T) {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	seedUser(t, repo, "secret1")
	uc := New(repo, nil)

	updated, err := uc.SetAvatar(context.Background(), "u1", "uploads/avatars/x.png")
	if err != nil {
		t.Fatalf("SetAvatar: %v", err)
	}
	if updated.Avatar != "uploads/avatars/x.png" {
		t.Errorf("avatar = %q", updated.Avatar)
	}

	if _, err := uc.SetAvatar(context.Background(), "ghost", "p"); err == nil {
		t.Error("unknown user accepted")
	}
}
