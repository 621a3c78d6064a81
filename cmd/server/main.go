package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasksphere/backend/api/handler"
	"github.com/tasksphere/backend/internal/config"
	"github.com/tasksphere/backend/internal/infrastructure/monitor"
	"github.com/tasksphere/backend/internal/infrastructure/outbox"
	pgInfra "github.com/tasksphere/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasksphere/backend/internal/infrastructure/redis"
	"github.com/tasksphere/backend/internal/infrastructure/storage"
	"github.com/tasksphere/backend/internal/middleware"
	"github.com/tasksphere/backend/internal/router"
	"github.com/tasksphere/backend/internal/services"
	"github.com/tasksphere/backend/internal/services/lifecycle"
	"github.com/tasksphere/backend/pkg/httpcontext"
	"github.com/tasksphere/backend/pkg/logger"
	"github.com/tasksphere/backend/repository/postgres"
	redisRepo "github.com/tasksphere/backend/repository/redis"
	activityUC "github.com/tasksphere/backend/usecase/activity"
	authUC "github.com/tasksphere/backend/usecase/auth"
	dashboardUC "github.com/tasksphere/backend/usecase/dashboard"
	notificationUC "github.com/tasksphere/backend/usecase/notification"
	profileUC "github.com/tasksphere/backend/usecase/profile"
	taskUC "github.com/tasksphere/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "events")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	fileStore, err := storage.NewFileStore(cfg.Uploads.Dir, cfg.Uploads.MaxSize, cfg.Uploads.AllowedExts)
	if err != nil {
		zapLogger.Fatal("failed to initialize file store", zap.Error(err))
	}

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	statsCache := redisRepo.NewStatsCache(redisClient, cfg.Dashboard.CacheTTL)
	loginLimiter := redisRepo.NewLoginLimiter(redisClient, cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)

	eventRelay := services.NewEventRelay(notificationRepo, activityRepo, outboxStore, zapLogger)

	outboxProcessor := services.NewOutboxProcessor(
		outboxStore,
		eventRelay,
		mon,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	outboxProcessor.Start()
	manager.Register("outbox_processor", func(ctx context.Context) error {
		outboxProcessor.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, authUC.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, eventRelay, zapLogger)
	notificationUseCase := notificationUC.New(notificationRepo, zapLogger)
	activityUseCase := activityUC.New(activityRepo, zapLogger)
	dashboardUseCase := dashboardUC.New(statsRepo, statsCache, cfg.Dashboard.CacheTTL, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, fileStore, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, fileStore, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notificationUseCase, ctxAdapter, zapLogger),
		Activity:     apiHandler.NewActivityHandler(activityUseCase, ctxAdapter, zapLogger),
		Dashboard:    apiHandler.NewDashboardHandler(dashboardUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(cfg.JWT.Secret, userRepo, zapLogger)
	loginLimit := middleware.RateLimit(loginLimiter, zapLogger)
	r := router.New(handlers, authMiddleware, loginLimit)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
