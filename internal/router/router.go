package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasksphere/backend/api/handler"
	"github.com/tasksphere/backend/internal/middleware"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Activity     *apiHandler.ActivityHandler
	Dashboard    *apiHandler.DashboardHandler
	Health       *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, auth Middleware, loginLimit Middleware) *router.Router {
	r := router.New()

	r.GET("/api/health", handlers.Health.Check)

	// Public user routes
	r.POST("/api/users", handlers.Auth.Register)
	r.POST("/api/users/login", loginLimit(handlers.Auth.Login))
	r.POST("/api/users/forgot-password", handlers.Auth.ForgotPassword)
	r.POST("/api/users/reset-password", handlers.Auth.ResetPassword)

	// Protected user routes
	r.GET("/api/users", auth(middleware.RequireAdmin(handlers.Profile.ListUsers)))
	r.GET("/api/users/me", auth(handlers.Profile.GetMe))
	r.PUT("/api/users/update-profile", auth(handlers.Profile.UpdateProfile))
	r.POST("/api/users/upload-avatar", auth(handlers.Profile.UploadAvatar))

	// Task routes
	r.POST("/api/tasks", auth(handlers.Task.CreateTask))
	r.GET("/api/tasks", auth(middleware.RequireAdmin(handlers.Task.ListTasks)))
	r.GET("/api/tasks/my", auth(handlers.Task.ListMyTasks))
	r.POST("/api/tasks/bulk-create", auth(handlers.Task.BulkCreate))
	r.DELETE("/api/tasks/bulk-delete", auth(handlers.Task.BulkDelete))
	r.GET("/api/tasks/{id}", auth(handlers.Task.GetTask))
	r.PUT("/api/tasks/{id}", auth(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", auth(handlers.Task.DeleteTask))
	r.POST("/api/tasks/{id}/attachments", auth(handlers.Task.UploadAttachment))
	r.POST("/api/tasks/{id}/comments", auth(handlers.Task.AddComment))
	r.DELETE("/api/tasks/{id}/comments/{commentId}", auth(handlers.Task.DeleteComment))
	r.PATCH("/api/tasks/{id}/in-progress", auth(handlers.Task.MarkInProgress))
	r.PATCH("/api/tasks/{id}/complete", auth(handlers.Task.MarkComplete))

	// Notifications
	r.GET("/api/notifications", auth(handlers.Notification.List))
	r.PATCH("/api/notifications/{id}/read", auth(handlers.Notification.MarkRead))

	// Admin reporting
	r.GET("/api/dashboard/stats", auth(middleware.RequireAdmin(handlers.Dashboard.Stats)))
	r.GET("/api/logs", auth(middleware.RequireAdmin(handlers.Activity.List)))

	return r
}
