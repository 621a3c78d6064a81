package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/domain"
	"github.com/tasksphere/backend/repository"
)

// RateLimit throttles a route per client address. When the limiter backend is
// unreachable the request is let through; throttling is best-effort.
func RateLimit(limiter repository.LoginLimiter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if limiter == nil {
				next(ctx)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			allowed, err := limiter.Allow(stdCtx, clientKey(ctx))
			cancel()
			if err != nil {
				logger.Warn("rate limiter unavailable", zap.Error(err))
				next(ctx)
				return
			}
			if !allowed {
				respondError(ctx, http.StatusTooManyRequests, domain.ErrCodeRateLimited, "too many requests, try again later")
				return
			}
			next(ctx)
		}
	}
}

func clientKey(ctx *fasthttp.RequestCtx) string {
	if addr := ctx.RemoteIP(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
