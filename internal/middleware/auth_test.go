package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/tasksphere/backend/domain"
)

type staticUserRepo struct {
	user *domain.User
}

func (s *staticUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *staticUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *staticUserRepo) GetByResetToken(_ context.Context, _ string, _ time.Time) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *staticUserRepo) List(_ context.Context) ([]domain.User, error) { return nil, nil }

func (s *staticUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }

func (s *staticUserRepo) Update(_ context.Context, _ *domain.User) error { return nil }

func signToken(t *testing.T, secret, userID string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, secret string, repo *staticUserRepo, authHeader string) (*fasthttp.RequestCtx, bool) {
	t.Helper()
	var reached bool
	handler := Auth(secret, repo, nil)(func(ctx *fasthttp.RequestCtx) {
		reached = true
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/api/users/me")
	if authHeader != "" {
		ctx.Request.Header.Set("Authorization", authHeader)
	}
	handler(ctx)
	return ctx, reached
}

func TestAuthAcceptsValidToken(t *testing.T) {
	repo := &staticUserRepo{user: &domain.User{ID: "u1", Role: domain.RoleUser}}
	token := signToken(t, "secret", "u1", jwt.SigningMethodHS256)

	ctx, reached := runAuth(t, "secret", repo, "Bearer "+token)
	if !reached {
		t.Fatalf("handler not reached, status %d body %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if user := UserFrom(ctx); user == nil || user.ID != "u1" {
		t.Errorf("user on context = %+v", user)
	}
}

func TestAuthRejections(t *testing.T) {
	repo := &staticUserRepo{user: &domain.User{ID: "u1"}}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage token", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "u1", jwt.SigningMethodHS256)},
		{"unknown user", "Bearer " + signToken(t, "secret", "ghost", jwt.SigningMethodHS256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, reached := runAuth(t, "secret", repo, tt.header)
			if reached {
				t.Fatal("handler reached with invalid credentials")
			}
			if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", got)
			}
		})
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	repo := &staticUserRepo{user: &domain.User{ID: "u1"}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte("secret"))

	ctx, reached := runAuth(t, "secret", repo, "Bearer "+signed)
	if reached {
		t.Fatal("handler reached with expired token")
	}
	if got := ctx.Response.StatusCode(); got != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
		wantPass   bool
	}{
		{"admin passes", &domain.User{ID: "a", Role: domain.RoleAdmin}, 0, true},
		{"plain user blocked", &domain.User{ID: "u", Role: domain.RoleUser}, http.StatusForbidden, false},
		{"no user blocked", nil, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			handler := RequireAdmin(func(ctx *fasthttp.RequestCtx) { reached = true })

			ctx := &fasthttp.RequestCtx{}
			if tt.user != nil {
				ctx.SetUserValue(UserKey, tt.user)
			}
			handler(ctx)

			if reached != tt.wantPass {
				t.Errorf("reached = %v, want %v", reached, tt.wantPass)
			}
			if !tt.wantPass {
				if got := ctx.Response.StatusCode(); got != tt.wantStatus {
					t.Errorf("status = %d, want %d", got, tt.wantStatus)
				}
			}
		})
	}
}
