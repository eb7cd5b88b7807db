package melody

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/llm"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/observability"
	"github.com/Conceptual-Machines/magda-compose/internal/prompt"
)

const llmReasoningMode = "low"

// TokenRecorder receives token usage of LLM calls
type TokenRecorder interface {
	RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int)
}

type llmTarget struct {
	provider llm.Provider
	model    string
}

// LLMBackend asks an LLM for the melody as structured JSON notes
type LLMBackend struct {
	targets  map[string]llmTarget
	builder  *prompt.Builder
	langfuse *observability.LangfuseClient
	metrics  TokenRecorder
}

// NewLLMBackend creates an LLM backend. langfuse and metrics may be nil.
func NewLLMBackend(langfuse *observability.LangfuseClient, metrics TokenRecorder) *LLMBackend {
	return &LLMBackend{
		targets:  make(map[string]llmTarget),
		builder:  prompt.NewPromptBuilder(),
		langfuse: langfuse,
		metrics:  metrics,
	}
}

// AddProvider makes entries with the given provider name use p with model
func (b *LLMBackend) AddProvider(name string, p llm.Provider, model string) {
	b.targets[name] = llmTarget{provider: p, model: model}
}

// Generate implements Backend
func (b *LLMBackend) Generate(
	ctx context.Context,
	entry catalog.ModelEntry,
	seed *models.NoteTimeline,
	durationSeconds, temperature float64,
) (*models.NoteTimeline, error) {
	target, ok := b.targets[entry.Provider]
	if !ok {
		return nil, apperrors.ModelUnavailable(entry.Name, fmt.Errorf("provider %q not configured", entry.Provider))
	}

	span := sentry.StartSpan(ctx, "melody.llm")
	span.SetTag("provider", entry.Provider)
	span.SetTag("model", target.model)
	defer span.Finish()
	ctx = span.Context()

	melodyPrompt, err := b.builder.BuildMelodyPrompt(seed, durationSeconds, temperature)
	if err != nil {
		return nil, err
	}

	trace := b.langfuse.StartTrace(ctx, "melody", map[string]interface{}{
		"registry_model": entry.Name,
		"provider":       entry.Provider,
	})
	defer trace.Finish()
	generation := trace.Generation("melody.generate", nil)
	defer generation.Finish()

	start := time.Now()
	resp, err := target.provider.Generate(ctx, &llm.GenerationRequest{
		Model:         target.model,
		SystemPrompt:  melodyPrompt.System,
		Input:         melodyPrompt.Input,
		Temperature:   temperature,
		ReasoningMode: llmReasoningMode,
		OutputSchema:  llm.MelodySchema(),
	})
	if err != nil {
		generation.SetLevel("ERROR")
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("melody generation failed: %w", err)
	}

	generation.LogCompletion(target.model, melodyPrompt.Input, resp.RawOutput,
		resp.InputTokens, resp.OutputTokens, map[string]interface{}{
			"temperature": temperature,
			"duration_s":  durationSeconds,
		})
	if b.metrics != nil {
		b.metrics.RecordTokenUsage(ctx, target.model, resp.InputTokens, resp.OutputTokens)
	}

	var output llm.MelodyOutput
	if err := json.Unmarshal([]byte(resp.RawOutput), &output); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("failed to parse melody output: %w", err)
	}

	melody := NotesToTimeline(output.Notes, seedQPM(seed), durationSeconds)
	span.Status = sentry.SpanStatusOK

	logger.Debug("Generated LLM melody", logger.Fields{
		"model":       target.model,
		"notes":       len(melody.Notes),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return melody, nil
}

// NotesToTimeline converts beat-positioned notes to seconds at a fixed tempo.
// Notes starting at or past durationSeconds, or with no length, are dropped.
func NotesToTimeline(notes []llm.MelodyNote, qpm, durationSeconds float64) *models.NoteTimeline {
	secondsPerBeat := 60.0 / qpm
	t := &models.NoteTimeline{}
	t.AddTempo(qpm, 0)
	for _, n := range notes {
		if n.DurationBeats <= 0 {
			continue
		}
		start := n.StartBeats * secondsPerBeat
		if start < 0 || start >= durationSeconds {
			continue
		}
		t.Add(models.NoteEvent{
			Pitch:     clampInt(n.MIDINoteNumber, 0, 127),
			StartTime: start,
			EndTime:   start + n.DurationBeats*secondsPerBeat,
			Velocity:  clampInt(n.Velocity, 1, 127),
			Channel:   models.ChannelMelody,
			Program:   models.ProgramPiano,
		})
	}
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
