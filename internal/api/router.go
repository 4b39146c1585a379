package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/qs3c/trending/config"
	"github.com/qs3c/trending/internal/api/handler"
	"github.com/qs3c/trending/internal/api/middleware"
)

type Router struct {
	viewHandler     *handler.ViewHandler
	trendingHandler *handler.TrendingHandler
	summaryHandler  *handler.SummaryHandler
	healthHandler   *handler.HealthHandler
	cfg             *config.Config
}

func NewRouter(
	viewHandler *handler.ViewHandler,
	trendingHandler *handler.TrendingHandler,
	summaryHandler *handler.SummaryHandler,
	healthHandler *handler.HealthHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		viewHandler:     viewHandler,
		trendingHandler: trendingHandler,
		summaryHandler:  summaryHandler,
		healthHandler:   healthHandler,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(r.cfg.CORS))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/health", r.healthHandler.Check)

	store := cookie.NewStore([]byte(r.cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	var limiter *middleware.IPRateLimiter
	if r.cfg.Trending.RateLimitPerSecond > 0 {
		limiter = middleware.NewIPRateLimiter(r.cfg.Trending.RateLimitPerSecond, r.cfg.Trending.RateLimitBurst)
	}

	api := engine.Group("/api/v1")
	{
		// 浏览记录：会话标识来自请求头或 cookie
		views := api.Group("/views")
		views.Use(
			middleware.RateLimit(limiter),
			sessions.Sessions(r.cfg.Session.CookieName, store),
			middleware.SessionKey(r.cfg.Session.HeaderName),
		)
		{
			views.POST("", r.viewHandler.Record)
			views.GET("/:entity_type/:entity_id", r.viewHandler.Viewed)
		}

		// 公开接口 - 榜单
		api.GET("/trending/:entity_type", r.trendingHandler.Get)

		// 运维接口
		admin := api.Group("/summaries")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			admin.GET("", r.summaryHandler.List)
			admin.POST("", r.summaryHandler.Summarize)
		}
	}

	return engine
}
