package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smoothie-order/internal/api"
	"smoothie-order/internal/core/catalog"
	"smoothie-order/internal/core/form"
	"smoothie-order/internal/core/guard"
	"smoothie-order/internal/core/nutrition"
	"smoothie-order/internal/core/order"
	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/infrastructure/database"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 可選）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.App.Name); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_path", cfg.Database.Path),
		zap.String("nutrition_base_url", cfg.Nutrition.BaseURL),
		zap.String("order_policy", cfg.Order.Policy),
		zap.String("guard_backend", cfg.Guard.Backend),
		zap.String("redis_password", config.MaskSecret(cfg.Guard.RedisPassword)),
	)

	policy, err := order.ParsePolicy(cfg.Order.Policy)
	if err != nil {
		common.LogFatal("Invalid order policy", zap.Error(err))
	}

	// 開啟資料庫並套用 migration
	store, err := database.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	// 初始化提交防重
	submitGuard, err := guard.New(cfg.Guard)
	if err != nil {
		common.LogFatal("Failed to initialize submission guard", zap.Error(err))
	}
	defer submitGuard.Close()

	nutritionClient := nutrition.NewClient(cfg.Nutrition)
	defer nutritionClient.Close()

	svc := form.NewService(
		store,
		catalog.NewReader(),
		nutrition.NewOrchestrator(nutritionClient),
		order.NewWriter(),
		submitGuard,
		policy,
	)

	router := api.SetupRouter(cfg, svc, store)

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
