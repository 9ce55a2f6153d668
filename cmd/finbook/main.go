package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finbook/internal/api"
	"finbook/internal/api/handlers"
	"finbook/internal/repository"
	"finbook/internal/service"
	"finbook/internal/suggest"
	"finbook/pkg/auth"
	"finbook/pkg/config"
	"finbook/pkg/logger"
	"finbook/pkg/postgres"

	"go.uber.org/zap"
)

// @title finbook API
// @version 1.0
// @description Bookkeeping backend with bank-statement ingestion

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finbook service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	statementRepo := repository.NewStatementRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	var assist *suggest.LLMAssist
	if cfg.Suggest.LLMEnabled && cfg.Suggest.GigaChatAPIKey != "" {
		assist, err = suggest.NewLLMAssist(&cfg.Suggest, appLogger)
		if err != nil {
			// keyword suggestions alone are a working configuration
			appLogger.Warn("LLM suggestion assist unavailable", zap.Error(err))
		} else {
			defer assist.Close()
		}
	}

	parseClient := service.NewParseClient(&cfg.Parser, appLogger)
	uploadService := service.NewUploadService(parseClient, &cfg.Upload, assist, appLogger)

	reportService := service.NewReportService(expenseRepo, appLogger)
	batchService := service.NewBatchService(statementRepo, reportService, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	uploadHandler := handlers.NewUploadHandler(uploadService, appLogger)
	batchHandler := handlers.NewBatchHandler(batchService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(reportService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, uploadHandler, batchHandler, expenseHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
