package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/pkg/httpcontext"
	"github.com/tasksphere/backend/repository"
	activityUC "github.com/tasksphere/backend/usecase/activity"
)

type ActivityHandler struct {
	baseHandler
	uc *activityUC.UseCase
}

func NewActivityHandler(uc *activityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the audit trail
// @Tags logs
// @Router /api/logs [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == nil {
		return
	}

	filter := repository.ActivityFilter{
		Page:  parseInt(string(ctx.QueryArgs().Peek("page")), 1),
		Limit: parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	entries, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, entries)
}
