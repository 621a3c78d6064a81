package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

// Update carries the optional profile fields a user may change. A password
// change requires the current password to match.
type Update struct {
	Name        string
	Email       string
	OldPassword string
	NewPassword string
}

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// ListUsers returns every registered account. Admin only; the handler guards.
func (uc *UseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, update Update) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" {
		user.Email = email
	}

	if update.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(update.OldPassword)) != nil {
			return nil, domain.NewError(domain.ErrCodeInvalid, "old password is incorrect")
		}
		if len(update.NewPassword) < 6 {
			return nil, domain.NewError(domain.ErrCodeInvalid, "password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(update.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar records the stored avatar path on the profile.
func (uc *UseCase) SetAvatar(ctx context.Context, userID, path string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Avatar = path
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
