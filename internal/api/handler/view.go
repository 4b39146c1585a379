package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/api/middleware"
	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/service"
)

type ViewHandler struct {
	viewService *service.ViewService
}

func NewViewHandler(viewService *service.ViewService) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
	}
}

// Record 记录一次浏览，重复浏览返回 recorded=false
// POST /api/v1/views
func (h *ViewHandler) Record(c *gin.Context) {
	var req dto.RecordViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.viewService.RecordView(c.Request.Context(), middleware.GetSessionKey(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSessionKey),
			errors.Is(err, service.ErrInvalidEntity),
			errors.Is(err, service.ErrInvalidKind):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUnknownEntityType):
			response.NotFoundError(c, err.Error())
		default:
			logger.L().Error("failed to record view", zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Viewed 当前会话是否已浏览过该实体
// GET /api/v1/views/:entity_type/:entity_id
func (h *ViewHandler) Viewed(c *gin.Context) {
	entityID, err := strconv.ParseUint(c.Param("entity_id"), 10, 64)
	if err != nil || entityID == 0 {
		response.ParamError(c, "entity_id 必须为正整数")
		return
	}
	ref := model.EntityRef{EntityType: c.Param("entity_type"), EntityID: entityID}

	viewed, err := h.viewService.HasViewed(c.Request.Context(), middleware.GetSessionKey(c), ref)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSessionKey),
			errors.Is(err, service.ErrInvalidEntity):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUnknownEntityType):
			response.NotFoundError(c, err.Error())
		default:
			logger.L().Error("failed to check view", zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, &dto.ViewedResponse{
		Viewed:     viewed,
		EntityType: ref.EntityType,
		EntityID:   ref.EntityID,
	})
}
