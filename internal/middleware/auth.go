package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/api/transport"
	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

// UserKey is the fasthttp user-value slot holding the resolved *domain.User.
const UserKey = "auth_user"

const resolveTimeout = 3 * time.Second

// Auth verifies the bearer token, resolves the acting user and stores it on
// the request. Requests without a valid identity stop here with a 401.
func Auth(secret string, users repository.UserRepository, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "not authorized, no token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid bearer token", zap.Error(err))
				respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "not authorized, token failed")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "not authorized, token failed")
				return
			}
			userID, _ := claims["user_id"].(string)
			if userID == "" {
				respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "not authorized, token failed")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
			user, err := users.GetByID(stdCtx, userID)
			cancel()
			if err != nil {
				respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "user not found")
				return
			}

			ctx.SetUserValue(UserKey, user)
			next(ctx)
		}
	}
}

// RequireAdmin rejects requests whose resolved user is not an admin. It must
// run inside Auth.
func RequireAdmin(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user := UserFrom(ctx)
		if user == nil {
			respondError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "not authorized, no token")
			return
		}
		if !user.IsAdmin() {
			respondError(ctx, http.StatusForbidden, domain.ErrCodeForbidden, "not authorized as admin")
			return
		}
		next(ctx)
	}
}

// UserFrom returns the user resolved by Auth, or nil.
func UserFrom(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(UserKey).(*domain.User)
	return user
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func respondError(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewError(string(code), message, nil))
	ctx.SetBody(body)
}
