// Package app wires the configured services shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	"github.com/Conceptual-Machines/magda-compose/internal/config"
	"github.com/Conceptual-Machines/magda-compose/internal/database"
	"github.com/Conceptual-Machines/magda-compose/internal/exec"
	"github.com/Conceptual-Machines/magda-compose/internal/llm"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/melody"
	"github.com/Conceptual-Machines/magda-compose/internal/metrics"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/observability"
	"github.com/Conceptual-Machines/magda-compose/internal/prompt"
	"github.com/Conceptual-Machines/magda-compose/internal/render"
	"github.com/Conceptual-Machines/magda-compose/internal/services"
)

// App holds the wired services
type App struct {
	Config        *config.Config
	Catalog       *catalog.Catalog
	Arrangements  *services.ArrangementService
	History       *services.HistoryService
	SentryMetrics *metrics.SentryMetrics
	CloudWatch    *metrics.Client

	db *gorm.DB
}

// New builds the catalog, melody registry, renderer, history store and
// pipeline from cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if cfg.PresetsFile != "" {
		if err := cat.MergePresetsFile(cfg.PresetsFile); err != nil {
			return nil, err
		}
	}

	sentryMetrics := metrics.NewSentryMetrics()
	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		logger.Warn("CloudWatch metrics disabled", logger.Fields{"error": err.Error()})
		cloudwatch = nil
	}

	runner := exec.NewRunner(cfg.PythonPath)
	registry := melody.NewRegistry(cat, cfg.BundleDir)
	registry.Register(catalog.ModelKindScript, melody.NewScriptBackend(runner, cfg.MelodyScript, cfg.BundleDir, ""))
	registerLLMModels(ctx, cfg, cat, registry, sentryMetrics)

	store, db, err := newHistoryStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	renderer := render.NewFluidSynth(runner, cfg.FluidSynthPath, cfg.SoundFontPath, cfg.SampleRate)
	arrangements := services.NewArrangementService(
		prompt.NewResolver(cat),
		registry,
		renderer,
		store,
		services.ArrangementConfig{
			OutputDir: cfg.OutputDir,
			SeedNote:  cfg.MelodySeedNote,
			Defaults:  requestDefaults(cfg),
		},
	).WithMetrics(sentryMetrics, cloudwatch)

	return &App{
		Config:        cfg,
		Catalog:       cat,
		Arrangements:  arrangements,
		History:       services.NewHistoryService(store, cat.Lexicon),
		SentryMetrics: sentryMetrics,
		CloudWatch:    cloudwatch,
		db:            db,
	}, nil
}

// ModelNames lists the registered melody models
func (a *App) ModelNames() []string {
	names := make([]string, 0, len(a.Catalog.Models))
	for _, m := range a.Catalog.Models {
		names = append(names, m.Name)
	}
	return names
}

// Close releases the history database, if any
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return database.Close(a.db)
}

// requestDefaults applies the configured request limits; unset limits keep the built-in ones
func requestDefaults(cfg *config.Config) models.Defaults {
	d := models.DefaultDefaults()
	if cfg.MaxLengthSeconds > 0 {
		d.MaxLength = cfg.MaxLengthSeconds
	}
	if cfg.MaxTempo > 0 {
		d.MaxTempo = cfg.MaxTempo
	}
	return d
}

func newHistoryStore(ctx context.Context, cfg *config.Config) (services.HistoryStore, *gorm.DB, error) {
	switch cfg.HistoryBackend {
	case config.HistoryFile:
		return services.NewFileHistoryStore(cfg.HistoryFile, cfg.HistoryLimit), nil, nil
	case config.HistorySQLite, config.HistoryPostgres:
		db, err := database.Connect(ctx, cfg.HistoryBackend, cfg.DatabaseURL, !cfg.IsProduction())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		return services.NewGormHistoryStore(db, cfg.HistoryLimit), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.HistoryBackend)
	}
}

// registerLLMModels adds the LLM melody entries whose API key is configured
func registerLLMModels(
	ctx context.Context,
	cfg *config.Config,
	cat *catalog.Catalog,
	registry *melody.Registry,
	sentryMetrics *metrics.SentryMetrics,
) {
	if cfg.OpenAIAPIKey == "" && cfg.GeminiAPIKey == "" {
		return
	}

	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	backend := melody.NewLLMBackend(observability.NewLangfuseClient(ctx, cfg), sentryMetrics)

	targets := []struct {
		name     string
		provider string
		model    string
		key      string
	}{
		{models.ModelOpenAIMelody, "openai", cfg.OpenAIMelodyModel, cfg.OpenAIAPIKey},
		{models.ModelGeminiMelody, "gemini", cfg.GeminiMelodyModel, cfg.GeminiAPIKey},
	}
	for _, t := range targets {
		if t.key == "" {
			continue
		}
		p, err := factory.GetProvider(ctx, t.model, t.provider)
		if err != nil {
			logger.Warn("LLM melody provider unavailable", logger.Fields{"provider": t.provider, "error": err.Error()})
			continue
		}
		backend.AddProvider(t.provider, p, t.model)
		if err := cat.RegisterModel(catalog.ModelEntry{Name: t.name, Kind: catalog.ModelKindLLM, Provider: t.provider}); err != nil {
			logger.Warn("LLM melody model not registered", logger.Fields{"model": t.name, "error": err.Error()})
		}
	}
	registry.Register(catalog.ModelKindLLM, backend)
}
