package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/api/middleware"
	"github.com/qs3c/trending/internal/entity"
	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/repository"
	"github.com/qs3c/trending/internal/service"
	"github.com/qs3c/trending/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var handlerNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type testContext struct {
	DB              *gorm.DB
	ViewService     *service.ViewService
	SummaryService  *service.SummaryService
	TrendingService *service.TrendingService
}

func setupServices(t *testing.T) (*testContext, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{Trending: config.TrendingConfig{Timezone: "UTC"}}

	registry := entity.NewRegistry()
	registry.Register(testutil.EntityTypeArticle, entity.NewTableResolver(db, "articles", "id"))

	viewRepo := repository.NewViewLogRepository(db).WithClock(testutil.FixedNow(handlerNow))
	summaryRepo := repository.NewSummaryRepository(db).WithClock(testutil.FixedNow(handlerNow))

	summaryService := service.NewSummaryService(viewRepo, summaryRepo, nil, cfg)
	ctx := &testContext{
		DB:              db,
		ViewService:     service.NewViewService(viewRepo, registry, summaryService, cfg),
		SummaryService:  summaryService,
		TrendingService: service.NewTrendingService(summaryRepo, registry, cfg).WithClock(testutil.FixedNow(handlerNow)),
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return ctx, cleanup
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// withSessionKey 模拟 SessionKey 中间件已确定的会话
func withSessionKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key != "" {
			c.Set(middleware.SessionKeyCtx, key)
		}
		c.Next()
	}
}
