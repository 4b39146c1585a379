package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/model/dto"
	"github.com/qs3c/trending/internal/pkg/logger"
	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/service"
)

// SummaryHandler 运维接口：查看和手动重算日汇总
type SummaryHandler struct {
	summaryService *service.SummaryService
	onRefreshed    func()
	now            func() time.Time
}

// NewSummaryHandler onRefreshed 在手动汇总成功后调用，一般用于清空榜单缓存
func NewSummaryHandler(summaryService *service.SummaryService, onRefreshed func()) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		onRefreshed:    onRefreshed,
		now:            time.Now,
	}
}

// List 某天的汇总，默认今天
// GET /api/v1/summaries?date=2026-10-19
func (h *SummaryHandler) List(c *gin.Context) {
	date := h.summaryService.Today(h.now())
	if v := c.Query("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			response.ParamError(c, "日期格式应为 YYYY-MM-DD")
			return
		}
		date = d
	}

	summaries, err := h.summaryService.ListByDate(c.Request.Context(), date)
	if err != nil {
		logger.L().Error("failed to list summaries", zap.String("date", date.String()), zap.Error(err))
		response.ServerError(c, "")
		return
	}

	items := make([]*dto.SummaryItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, &dto.SummaryItem{
			ViewsOn:    s.ViewsOn.String(),
			EntityType: s.EntityType,
			EntityID:   s.EntityID,
			Kind:       s.Kind,
			Count:      s.Count,
		})
	}

	response.SuccessList(c, len(items), items)
}

// Summarize 重新汇总某天，可只针对一个实体
// POST /api/v1/summaries
func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req dto.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		response.ParamError(c, "日期格式应为 YYYY-MM-DD")
		return
	}

	var viewLog *model.ViewLog
	if req.EntityType != "" || req.EntityID != 0 {
		if req.EntityType == "" || req.EntityID == 0 {
			response.ParamError(c, "entity_type 和 entity_id 需同时提供")
			return
		}
		viewLog = &model.ViewLog{EntityType: req.EntityType, EntityID: req.EntityID}
	}

	result, err := h.summaryService.Summarize(c.Request.Context(), date, viewLog)
	if err != nil {
		logger.L().Error("manual summarize failed", zap.String("date", req.Date), zap.Error(err))
		response.ServerError(c, "")
		return
	}

	if h.onRefreshed != nil {
		h.onRefreshed()
	}

	response.Success(c, &dto.SummarizeResponse{
		Date:    result.Date.String(),
		Groups:  result.Groups,
		Created: result.Created,
		Updated: result.Updated,
	})
}
