package router

import (
	"fmt"
	"strings"

	"github.com/studentperks/internal/cache"
	"github.com/studentperks/internal/config"
	staffhandlers "github.com/studentperks/internal/http/handlers/staff"
	"github.com/studentperks/internal/logger"
	"github.com/studentperks/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	staffHandler := staffhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sp"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:staff_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	scanRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:scan", redisPrefix),
		WindowSeconds: cfg.Security.ScanRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ScanRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.ScanRateLimit.BlockSeconds,
		MessageKey:    "error.scan_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		staff := apiV1.Group("/staff")
		{
			// 登录接口（无需鉴权）
			staff.POST("/auth/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), staffHandler.Login)

			// 需要鉴权的接口
			authorized := staff.Use(StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo))
			{
				authorized.POST("/redemptions", RateLimitMiddleware(redisClient, scanRule, KeyByIP), staffHandler.CreateRedemption)
				authorized.POST("/redemptions/:id/reject", staffHandler.RejectRedemption)
				authorized.GET("/redemptions", staffHandler.ListRedemptions)
				authorized.GET("/redemptions/:id", staffHandler.GetRedemption)
				authorized.GET("/offers", staffHandler.ListOffers)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
