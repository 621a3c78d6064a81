package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasksphere/backend/api/transport"
	"github.com/tasksphere/backend/internal/infrastructure/storage"
	"github.com/tasksphere/backend/pkg/httpcontext"
	profileUC "github.com/tasksphere/backend/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc    *profileUC.UseCase
	files *storage.FileStore
}

func NewProfileHandler(uc *profileUC.UseCase, files *storage.FileStore, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		files:       files,
	}
}

// @Summary Current user's profile
// @Tags users
// @Router /api/users/me [get]
func (h *ProfileHandler) GetMe(ctx *fasthttp.RequestCtx) {
	user := h.actor(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, profile)
}

// @Summary List all users
// @Tags users
// @Router /api/users [get]
func (h *ProfileHandler) ListUsers(ctx *fasthttp.RequestCtx) {
	if h.actor(ctx) == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.ListUsers(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, users)
}

// @Summary Update name, email or password
// @Tags users
// @Router /api/users/update-profile [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	user := h.actor(ctx)
	if user == nil {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProfile(stdCtx, user.ID, profileUC.Update{
		Name:        req.Name,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Upload a profile avatar
// @Tags users
// @Router /api/users/upload-avatar [post]
func (h *ProfileHandler) UploadAvatar(ctx *fasthttp.RequestCtx) {
	user := h.actor(ctx)
	if user == nil {
		return
	}

	header, err := ctx.FormFile("avatar")
	if err != nil {
		h.respondInvalid(ctx, "no file uploaded")
		return
	}

	saved, err := h.files.Save(header, "avatars")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.SetAvatar(stdCtx, user.ID, saved.Path)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"message": "avatar uploaded",
		"avatar":  updated.Avatar,
	})
}
