package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/testutil"
)

func summaryRouter(h *SummaryHandler) *gin.Engine {
	router := gin.New()
	router.GET("/summaries", h.List)
	router.POST("/summaries", h.Summarize)
	return router
}

func postSummarize(t *testing.T, router *gin.Engine, body interface{}) response.Response {
	t.Helper()
	req := httptest.NewRequest("POST", "/summaries", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	return parseResponse(t, w)
}

func TestSummaryHandler_SummarizeAndList(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	refreshed := 0
	h := NewSummaryHandler(ctx.SummaryService, func() { refreshed++ })
	h.now = testutil.FixedNow(handlerNow)
	router := summaryRouter(h)

	at := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	testutil.TestViewLogs(t, ctx.DB, 2, testutil.ArticleRef(1), "", at)
	testutil.TestViewLogs(t, ctx.DB, 4, testutil.ArticleRef(2), "", at)

	resp := postSummarize(t, router, gin.H{"date": "2026-10-18"})
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "2026-10-18", data["date"])
	assert.Equal(t, float64(2), data["groups"])
	assert.Equal(t, float64(2), data["created"])
	assert.Equal(t, 1, refreshed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/summaries?date=2026-10-18", nil))
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	list := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), list["total"])
	items := list["items"].([]interface{})
	assert.Equal(t, float64(2), items[0].(map[string]interface{})["entity_id"])
	assert.Equal(t, float64(4), items[0].(map[string]interface{})["count"])

	// 默认查询今天，今天没有数据
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/summaries", nil))
	resp = parseResponse(t, w)
	assert.Equal(t, float64(0), resp.Data.(map[string]interface{})["total"])
}

func TestSummaryHandler_Summarize_SingleEntity(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	router := summaryRouter(NewSummaryHandler(ctx.SummaryService, nil))

	at := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	testutil.TestViewLogs(t, ctx.DB, 2, testutil.ArticleRef(1), "", at)
	testutil.TestViewLogs(t, ctx.DB, 4, testutil.ArticleRef(2), "", at)

	resp := postSummarize(t, router, gin.H{"date": "2026-10-18", "entity_type": "article", "entity_id": 2})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["groups"])
}

func TestSummaryHandler_Errors(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	router := summaryRouter(NewSummaryHandler(ctx.SummaryService, nil))

	assert.Equal(t, response.CodeParamError, postSummarize(t, router, gin.H{}).Code)
	assert.Equal(t, response.CodeParamError, postSummarize(t, router, gin.H{"date": "18/10/2026"}).Code)
	assert.Equal(t, response.CodeParamError, postSummarize(t, router, gin.H{"date": "2026-10-18", "entity_type": "article"}).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/summaries?date=yesterday", nil))
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}
