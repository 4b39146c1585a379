package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/service"
)

const maxTrendingLimit = 100

type TrendingHandler struct {
	trendingService *service.TrendingService
}

func NewTrendingHandler(trendingService *service.TrendingService) *TrendingHandler {
	return &TrendingHandler{
		trendingService: trendingService,
	}
}

// Get 热门榜单
// GET /api/v1/trending/:entity_type?days=30&kind=&limit=20
func (h *TrendingHandler) Get(c *gin.Context) {
	entityType := c.Param("entity_type")

	days := h.trendingService.DefaultDays()
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > service.MaxDays {
			response.ParamError(c, "days 取值范围为 0-3650")
			return
		}
		days = n
	}

	// limit 为 0 表示返回全部
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxTrendingLimit {
			response.ParamError(c, "limit 取值范围为 0-100")
			return
		}
		limit = n
	}

	kind := c.Query("kind")

	items, err := h.trendingService.Trending(c.Request.Context(), entityType, days, kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEntity),
			errors.Is(err, service.ErrInvalidDays),
			errors.Is(err, service.ErrInvalidKind):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrUnknownEntityType):
			response.NotFoundError(c, err.Error())
		default:
			logger.L().Error("failed to query trending", zap.String("entity_type", entityType), zap.Error(err))
			response.ServerError(c, "")
		}
		return
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	response.Success(c, &dto.TrendingResponse{
		EntityType: entityType,
		Days:       days,
		Kind:       kind,
		Items:      items,
	})
}
