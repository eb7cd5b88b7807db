package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/magda-compose/internal/api"
	"github.com/Conceptual-Machines/magda-compose/internal/app"
	"github.com/Conceptual-Machines/magda-compose/internal/config"
)

const sentryFlushTimeout = 2 * time.Second

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "magda-compose@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	services, err := app.New(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to initialize services:", err)
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Printf("Failed to close history database: %v", err)
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(api.Dependencies{
		Config:        cfg,
		Version:       GetVersion(),
		Arranger:      services.Arrangements,
		History:       services.History,
		Models:        services.ModelNames(),
		SentryMetrics: services.SentryMetrics,
		CloudWatch:    services.CloudWatch,
	})

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
