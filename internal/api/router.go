package api

import (
	"time"

	formHandler "smoothie-order/internal/api/handlers/form"
	"smoothie-order/internal/api/handlers/health"
	"smoothie-order/internal/api/middleware"
	formService "smoothie-order/internal/core/form"
	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小預設限制 (1MB)
const defaultMaxBodySize = 1 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *formService.Service, store health.Pinger) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(store, cfg.App.Version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	h := formHandler.NewHandler(svc)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.GET("/form", h.HandleLoadForm)
		api.POST("/form/state", h.HandleFormState)

		nutritionGroup := api.Group("/nutrition")
		if cfg.RateLimit.Enabled {
			nutritionGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		nutritionGroup.POST("", h.HandleNutrition)

		api.POST("/orders", dedup.Handler(), h.HandleSubmitOrder)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
