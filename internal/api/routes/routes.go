package routes

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"talentflow-core/internal/api/handlers"
	"talentflow-core/internal/api/middleware"
	"talentflow-core/internal/background"
	"talentflow-core/internal/config"
	"talentflow-core/internal/insights"
	"talentflow-core/internal/pipeline"
	"talentflow-core/internal/scoring"
	"talentflow-core/pkg/utils"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	Config         *config.Config
	DB             *sql.DB
	PipelineSvc    *pipeline.Service
	Lister         handlers.ApplicationLister
	Engine         *scoring.Engine
	Cache          *utils.RedisClient
	InsightManager *insights.Manager
	TaskManager    background.TaskManager
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.RateLimit(deps.Config.Server.RateLimit))
	e.Use(middleware.TimeoutConfig(deps.Config.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.DB, deps.TaskManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.GET("/stages", handlers.StagesHandler())

		applications := v1.Group("/applications")
		{
			applications.POST("", handlers.CreateApplicationHandler(deps.PipelineSvc))
			applications.GET("", handlers.ListApplicationsHandler(deps.Lister))
			applications.GET("/:id", handlers.GetApplicationHandler(deps.PipelineSvc))
			applications.POST("/:id/transition", handlers.TransitionHandler(deps.PipelineSvc))
			applications.POST("/:id/shortlist", handlers.ShortlistHandler(deps.PipelineSvc))
			applications.POST("/:id/reject", handlers.RejectHandler(deps.PipelineSvc))
			applications.POST("/:id/advance", handlers.AdvanceHandler(deps.PipelineSvc))
		}

		match := v1.Group("/match")
		{
			match.POST("/score", handlers.ScoreHandler(deps.Engine, deps.Cache, deps.InsightManager))
			match.POST("/batch", handlers.BatchScoreHandler(deps.Engine, deps.Cache, deps.TaskManager))
		}

		v1.GET("/tasks/:id", handlers.TaskStatusHandler(deps.TaskManager))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "TalentFlow Core",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
