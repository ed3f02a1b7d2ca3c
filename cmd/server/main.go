package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"talentflow-core/internal/api/routes"
	"talentflow-core/internal/background"
	"talentflow-core/internal/config"
	"talentflow-core/internal/insights"
	"talentflow-core/internal/logging"
	"talentflow-core/internal/notify"
	"talentflow-core/internal/pipeline"
	"talentflow-core/internal/scoring"
	"talentflow-core/internal/storage/postgres"
	"talentflow-core/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting TalentFlow Core")

	// Connect to Postgres
	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	// Connect to Redis (match result cache)
	cache := utils.NewRedisClient(cfg)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	if err := cache.Ping(pingCtx); err != nil {
		logger.Warn("Redis unreachable, match results will not be cached", map[string]interface{}{
			"error": err.Error(),
		})
		cache = nil
	}
	pingCancel()
	if cache != nil {
		defer cache.Close()
	}

	// Initialize insight manager
	insightManager := insights.NewManager(cfg)
	if err := insightManager.Start(); err != nil {
		logger.Fatal("Failed to start insight manager", map[string]interface{}{"error": err.Error()})
	}

	// Initialize background task manager
	logger.Info("Initializing background task manager")
	taskManager := background.NewTaskManager(cfg)
	ctx := context.Background()
	if err := taskManager.Start(ctx); err != nil {
		logger.Fatal("Failed to start task manager", map[string]interface{}{"error": err.Error()})
	}

	// Wire the pipeline: repository, optional webhook dispatcher, service
	repo := postgres.NewApplicationRepository(db)

	var dispatcher pipeline.EventDispatcher
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL != "" {
		webhookClient, err := notify.NewClient(notify.ClientConfig{
			WebhookURL: cfg.Notify.WebhookURL,
			Timeout:    cfg.Notify.Timeout,
			MaxRetries: cfg.Notify.MaxRetries,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create webhook client", map[string]interface{}{"error": err.Error()})
		}
		dispatcher = notify.NewDispatcher(webhookClient, taskManager)
	}

	pipelineSvc := pipeline.NewService(repo, dispatcher)
	engine := scoring.NewEngine(cfg)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, routes.Dependencies{
		Config:         cfg,
		DB:             db,
		PipelineSvc:    pipelineSvc,
		Lister:         repo,
		Engine:         engine,
		Cache:          cache,
		InsightManager: insightManager,
		TaskManager:    taskManager,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop task manager first so queued notifications and batch scores drain
		logger.Info("Stopping background task manager...")
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping insight manager...")
		if err := insightManager.Stop(); err != nil {
			logger.Error("Error stopping insight manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}
}
