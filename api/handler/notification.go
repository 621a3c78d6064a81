package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/pkg/httpcontext"
	notificationUC "github.com/tasksphere/backend/usecase/notification"
)

type NotificationHandler struct {
	baseHandler
	uc *notificationUC.UseCase
}

func NewNotificationHandler(uc *notificationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the caller's notifications
// @Tags notifications
// @Router /api/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notifications, err := h.uc.ListMine(stdCtx, actor.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, notifications)
}

// @Summary Mark a notification as read
// @Tags notifications
// @Router /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == nil {
		return
	}
	id, ok := h.pathValue(ctx, "id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notification, err := h.uc.MarkRead(stdCtx, id, actor.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, notification)
}
