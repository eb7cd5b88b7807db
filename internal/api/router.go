package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-compose/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/magda-compose/internal/api/middleware"
	"github.com/Conceptual-Machines/magda-compose/internal/config"
	"github.com/Conceptual-Machines/magda-compose/internal/metrics"
)

// Dependencies are the services the router exposes
type Dependencies struct {
	Config   *config.Config
	Version  string
	Arranger handlers.Arranger
	History  handlers.HistoryManager
	// Models lists the registered melody models for the metrics endpoint
	Models        []string
	SentryMetrics *metrics.SentryMetrics
	CloudWatch    *metrics.Client
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.SentryMetrics, deps.CloudWatch))

	router.Use(apimiddleware.CORS())

	healthHandler := handlers.NewHealthHandler(cfg.SoundFontPath, cfg.OutputDir)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(deps.Version, handlers.ServiceInfo{
		Models:         deps.Models,
		OutputDir:      cfg.OutputDir,
		HistoryBackend: cfg.HistoryBackend,
		MaxLength:      cfg.MaxLengthSeconds,
		MaxTempo:       cfg.MaxTempo,
	}, deps.History)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	compose := router.Group("/")
	if cfg.IsGatewayMode() {
		compose.Use(apimiddleware.GatewayAuth())
	} else {
		compose.Use(apimiddleware.NoAuth())
	}
	{
		generationHandler := handlers.NewGenerationHandler(deps.Arranger)
		compose.POST("/generate_music", generationHandler.GenerateMusic)
		compose.POST("/resolve", generationHandler.Resolve)

		historyHandler := handlers.NewHistoryHandler(deps.History)
		compose.GET("/history", historyHandler.List)
		compose.GET("/history.csv", historyHandler.ExportCSV)
		compose.POST("/history.csv", historyHandler.ImportCSV)
		compose.POST("/delete_record/:timestamp", historyHandler.DeleteRecord)
		compose.POST("/clear_history", historyHandler.ClearHistory)

		downloadHandler := handlers.NewDownloadHandler(cfg.OutputDir)
		compose.GET("/download_music/:filename", downloadHandler.Download)
	}

	return router
}
