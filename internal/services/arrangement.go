package services

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Conceptual-Machines/magda-compose/internal/agents/arranger"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/melody"
	"github.com/Conceptual-Machines/magda-compose/internal/metrics"
	"github.com/Conceptual-Machines/magda-compose/internal/midifile"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/prompt"
	"github.com/Conceptual-Machines/magda-compose/internal/render"
)

// TimestampFormat names output files and keys history records
const TimestampFormat = "20060102_150405"

// ArrangementConfig holds the pipeline settings
type ArrangementConfig struct {
	OutputDir string
	SeedNote  string
	Defaults  models.Defaults
}

// ArrangeOptions tune a single run
type ArrangeOptions struct {
	// NoRender stops after writing the MIDI file
	NoRender bool
}

// ArrangementService runs the arrangement pipeline: resolve the request, get a
// melody, layer the accompaniment, write MIDI, render audio, log history.
type ArrangementService struct {
	resolver   *prompt.Resolver
	generator  melody.Generator
	renderer   render.Renderer
	history    HistoryStore
	writer     *midifile.Writer
	config     ArrangementConfig
	metrics    *metrics.SentryMetrics
	cloudwatch *metrics.Client

	newRand func() *rand.Rand
	now     func() time.Time
}

// NewArrangementService creates the pipeline. renderer and history may be nil:
// without a renderer every run is MIDI only, without history nothing is logged.
func NewArrangementService(
	resolver *prompt.Resolver,
	generator melody.Generator,
	renderer render.Renderer,
	history HistoryStore,
	cfg ArrangementConfig,
) *ArrangementService {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.SeedNote == "" {
		cfg.SeedNote = melody.DefaultSeedNote
	}
	if cfg.Defaults.Length == 0 {
		cfg.Defaults = models.DefaultDefaults()
	}
	return &ArrangementService{
		resolver:  resolver,
		generator: generator,
		renderer:  renderer,
		history:   history,
		writer:    midifile.NewWriter(),
		config:    cfg,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		now: time.Now,
	}
}

// WithMetrics attaches metric recorders; either may be nil
func (s *ArrangementService) WithMetrics(sentryMetrics *metrics.SentryMetrics, cloudwatch *metrics.Client) *ArrangementService {
	s.metrics = sentryMetrics
	s.cloudwatch = cloudwatch
	return s
}

// WithRandSource replaces the random source of the arpeggio layer
func (s *ArrangementService) WithRandSource(newRand func() *rand.Rand) *ArrangementService {
	s.newRand = newRand
	return s
}

// WithClock replaces the clock used for timestamps
func (s *ArrangementService) WithClock(now func() time.Time) *ArrangementService {
	s.now = now
	return s
}

// OutputDir returns the directory generated files are written to
func (s *ArrangementService) OutputDir() string {
	return s.config.OutputDir
}

// Preview resolves a request and plans it without generating anything
func (s *ArrangementService) Preview(req models.ArrangementRequest) (*models.Arrangement, error) {
	resolved := s.resolver.Resolve(req.Prompt, req.Overrides, s.config.Defaults)
	plan := arranger.PlanFor(resolved)
	return &models.Arrangement{
		Request:     resolved,
		Sections:    plan.Sections,
		Progression: arranger.ProgressionFor(resolved),
	}, nil
}

// Arrange runs the full pipeline for one request
func (s *ArrangementService) Arrange(ctx context.Context, req models.ArrangementRequest, opts ArrangeOptions) (*models.Arrangement, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "arrangement.arrange")
	defer transaction.Finish()
	ctx = transaction.Context()

	resolved := s.resolver.Resolve(req.Prompt, req.Overrides, s.config.Defaults)
	transaction.SetTag("model", resolved.Model)

	logger.Info("Arrangement request resolved", logger.Fields{
		"model":       resolved.Model,
		"length":      resolved.Length,
		"tempo":       resolved.Tempo,
		"temperature": resolved.Temperature,
		"genre":       resolved.Genre,
		"drums":       resolved.AddDrums,
		"arpeggio":    resolved.AddArpeggio,
		"pad":         resolved.HasPad(),
	})

	fail := func(err error) (*models.Arrangement, error) {
		transaction.SetTag("success", "false")
		s.metrics.RecordArrangement(ctx, resolved.Model, time.Since(startTime), 0, false)
		s.cloudwatch.RecordArrangement(resolved.Model, time.Since(startTime), false)
		return nil, err
	}

	if err := s.generator.Check(resolved.Model); err != nil {
		logger.Warn("Melody model unavailable", logger.Fields{"model": resolved.Model, "error": err.Error()})
		return fail(err)
	}

	timeline, plan, progression, err := s.compose(ctx, resolved)
	if err != nil {
		return fail(err)
	}

	timestamp := s.now().Format(TimestampFormat)
	baseName := OutputBaseName(resolved, timestamp)
	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return fail(apperrors.RenderFailure(fmt.Errorf("create output dir: %w", err)))
	}

	midiFile := baseName + ".mid"
	if err := s.writer.WriteFile(timeline, filepath.Join(s.config.OutputDir, midiFile)); err != nil {
		return fail(apperrors.RenderFailure(err))
	}

	var wavFile string
	if !opts.NoRender && s.renderer != nil {
		wavFile = baseName + ".wav"
		renderStart := time.Now()
		err := s.renderer.Render(ctx,
			filepath.Join(s.config.OutputDir, midiFile),
			filepath.Join(s.config.OutputDir, wavFile))
		s.metrics.RecordRender(ctx, time.Since(renderStart), err == nil)
		s.cloudwatch.RecordRender(time.Since(renderStart), err == nil)
		if err != nil {
			logger.Error("Audio render failed", err, logger.Fields{"model": resolved.Model, "midi": midiFile})
			return fail(err)
		}
	}

	if s.history != nil {
		record := models.NewHistoryRecord(timestamp, resolved, midiFile, wavFile)
		if err := s.history.Append(ctx, record); err != nil {
			logger.Error("History append failed", err, logger.Fields{"timestamp": timestamp})
		}
	}

	counts := timeline.CountByChannel()
	duration := time.Since(startTime)
	transaction.SetTag("success", "true")
	s.metrics.RecordArrangement(ctx, resolved.Model, duration, len(timeline.Notes), true)
	s.cloudwatch.RecordArrangement(resolved.Model, duration, true)
	logger.LogArrangement(ctx, resolved.Model, duration, counts, logger.Fields{
		"timestamp": timestamp,
		"midi_file": midiFile,
		"wav_file":  wavFile,
	})

	return &models.Arrangement{
		Request:     resolved,
		Sections:    plan.Sections,
		Progression: progression,
		Timeline:    timeline,
		Timestamp:   timestamp,
		BaseName:    baseName,
		MIDIFile:    midiFile,
		WAVFile:     wavFile,
		NoteCount:   len(timeline.Notes),
	}, nil
}

// compose gets the melody and builds the frozen multi-layer timeline
func (s *ArrangementService) compose(
	ctx context.Context,
	resolved models.ResolvedRequest,
) (*models.NoteTimeline, arranger.SectionPlan, models.ChordProgression, error) {
	seed, err := melody.SeedFragment(s.config.SeedNote, resolved.Tempo)
	if err != nil {
		return nil, arranger.SectionPlan{}, nil, err
	}

	span := sentry.StartSpan(ctx, "melody.generate")
	raw, err := s.generator.Generate(span.Context(), seed, float64(resolved.Length), resolved.Temperature, resolved.Model)
	span.Finish()
	if err != nil {
		logger.Error("Melody generation failed", err, logger.Fields{"model": resolved.Model})
		return nil, arranger.SectionPlan{}, nil, err
	}

	progression := arranger.ProgressionFor(resolved)
	plan := arranger.PlanFor(resolved)

	timeline := arranger.NewEngine(s.newRand()).BuildTimeline(resolved, raw, progression)
	arranger.ApplyTempoCurve(timeline, resolved.Tempo, plan.Tempos)
	arranger.Normalize(timeline, resolved.MelodyInstrument)
	timeline.Freeze()

	logger.Debug("Timeline built", logger.Fields{
		"notes":    len(timeline.Notes),
		"sections": len(plan.Sections),
		"chords":   len(progression),
	})
	return timeline, plan, progression, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// OutputBaseName names the files of one run. A title replaces the parameter
// prefix with its slug.
func OutputBaseName(req models.ResolvedRequest, timestamp string) string {
	if slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(req.Title), "_"), "_"); slug != "" {
		return slug + "_" + timestamp
	}
	return fmt.Sprintf("generated_%s_%ds_%dbpm_%stemp_inst%d_%s",
		req.Model, req.Length, req.Tempo, formatTemperature(req.Temperature), req.MelodyInstrument, timestamp)
}

// formatTemperature always keeps a decimal point: 1 -> "1.0", 0.85 -> "0.85"
func formatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
