package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/trending/internal/model"
	"github.com/qs3c/trending/internal/pkg/response"
	"github.com/qs3c/trending/internal/testutil"
)

func trendingRouter(ctx *testContext) *gin.Engine {
	router := gin.New()
	router.GET("/trending/:entity_type", NewTrendingHandler(ctx.TrendingService).Get)
	return router
}

func getTrending(t *testing.T, ctx *testContext, url string) (response.Response, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	trendingRouter(ctx).ServeHTTP(w, httptest.NewRequest("GET", url, nil))
	return parseResponse(t, w), w
}

func TestTrendingHandler_Get(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	today := model.DateOf(handlerNow, time.UTC)
	a := testutil.TestArticle(t, ctx.DB, testutil.WithArticleTitle("first"))
	b := testutil.TestArticle(t, ctx.DB, testutil.WithArticleTitle("second"))
	testutil.TestSummary(t, ctx.DB, today, testutil.ArticleRef(a.ID), "", 3)
	testutil.TestSummary(t, ctx.DB, today, testutil.ArticleRef(b.ID), "", 8)

	resp, w := getTrending(t, ctx, "/trending/article")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(30), data["days"])

	items := data["items"].([]interface{})
	require.Len(t, items, 2)

	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(b.ID), first["entity_id"])
	assert.Equal(t, float64(8), first["num_views"])
	assert.Equal(t, "second", first["object"].(map[string]interface{})["title"])
}

func TestTrendingHandler_Get_Limit(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	today := model.DateOf(handlerNow, time.UTC)
	for i := uint64(1); i <= 3; i++ {
		testutil.TestSummary(t, ctx.DB, today, testutil.ArticleRef(i), "", i)
	}

	resp, _ := getTrending(t, ctx, "/trending/article?limit=2&days=7")
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(7), data["days"])
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	// 实体不存在时 object 为 null
	assert.Nil(t, items[0].(map[string]interface{})["object"])
}

func TestTrendingHandler_Get_Errors(t *testing.T) {
	ctx, cleanup := setupServices(t)
	defer cleanup()

	tests := []struct {
		name     string
		url      string
		wantCode int
	}{
		{"negative days", "/trending/article?days=-1", response.CodeParamError},
		{"days not a number", "/trending/article?days=week", response.CodeParamError},
		{"days beyond cap", "/trending/article?days=3651", response.CodeParamError},
		{"limit too large", "/trending/article?limit=1000", response.CodeParamError},
		{"unknown type", "/trending/video", response.CodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := getTrending(t, ctx, tt.url)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
