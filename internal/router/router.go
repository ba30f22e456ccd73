package router

import (
	"fmt"
	"strings"

	"github.com/akiranaka1984/affiliate/internal/cache"
	"github.com/akiranaka1984/affiliate/internal/config"
	internalhandlers "github.com/akiranaka1984/affiliate/internal/http/handlers/internalapi"
	publichandlers "github.com/akiranaka1984/affiliate/internal/http/handlers/public"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按推广侧/内部分组）
	publicHandler := publichandlers.New(c)
	internalHandler := internalhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aff"
	}
	redisClient := cache.Client()
	trackingRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:track", redisPrefix),
		WindowSeconds: cfg.Security.TrackingRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.TrackingRateLimit.MaxRequests,
		Message:       "tracking rate limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开跟踪接口（按 IP 限流）
		track := apiV1.Group("/track")
		track.Use(RateLimitMiddleware(redisClient, trackingRule, KeyByIP))
		{
			track.GET("/click/:code", publicHandler.TrackClick)
			track.POST("/conversion", publicHandler.TrackConversion)
		}

		// 推广用户接口（需鉴权）
		affiliate := apiV1.Group("")
		affiliate.Use(AffiliateJWTAuthMiddleware(cfg.JWT.SecretKey))
		{
			affiliate.POST("/links", publicHandler.CreateLink)
			affiliate.GET("/links", publicHandler.ListLinks)
			affiliate.GET("/links/:id", publicHandler.GetLink)
			affiliate.DELETE("/links/:id", publicHandler.DeleteLink)
			affiliate.GET("/links/:id/stats", publicHandler.GetLinkStats)
			affiliate.GET("/links/:id/clicks", publicHandler.ListLinkClicks)
			affiliate.GET("/links/:id/conversions", publicHandler.ListLinkConversions)
			affiliate.GET("/stats/summary", publicHandler.GetSummary)
		}

		// 内部接口（服务间调用）
		internal := apiV1.Group("/internal")
		internal.Use(InternalTokenMiddleware(cfg.Security.InternalToken))
		{
			internal.POST("/conversions/:id/review", internalHandler.ReviewConversion)
			internal.GET("/conversions/:id", internalHandler.GetConversion)
			internal.PUT("/links/:id/status", internalHandler.UpdateLinkStatus)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
