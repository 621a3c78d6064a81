package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

const resetTokenTTL = 15 * time.Minute

// TokenConfig controls JWT issuance.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type UseCase struct {
	users  repository.UserRepository
	tokens TokenConfig
	logger *zap.Logger
}

func New(users repository.UserRepository, tokens TokenConfig, logger *zap.Logger) *UseCase {
	if tokens.TTL <= 0 {
		tokens.TTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a user account and returns it with a fresh token.
func (uc *UseCase) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "name, email and password are required")
	}
	if len(password) < 6 {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login validates credentials and returns the user with a fresh token.
// Bad email and bad password are indistinguishable to the caller.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, "", domain.NewError(domain.ErrCodeUnauthorized, "invalid email or password")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.NewError(domain.ErrCodeUnauthorized, "invalid email or password")
	}

	token, err := uc.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken mints a signed bearer token for the user.
func (uc *UseCase) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iss":     uc.tokens.Issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(uc.tokens.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.tokens.Secret))
}

// ForgotPassword stores a hashed reset token on the account and returns the
// raw token. Delivery (email) is out of scope; callers surface it directly.
func (uc *UseCase) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	expires := time.Now().Add(resetTokenTTL)
	user.ResetTokenHash = hashToken(token)
	user.ResetExpiresAt = &expires

	if err := uc.users.Update(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a valid reset token and installs a new password.
func (uc *UseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || len(newPassword) < 6 {
		return domain.NewError(domain.ErrCodeInvalid, "token and a password of at least 6 characters are required")
	}

	user, err := uc.users.GetByResetToken(ctx, hashToken(token), time.Now())
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewError(domain.ErrCodeInvalid, "invalid or expired token")
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	return uc.users.Update(ctx, user)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
