package melody

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/exec"
	"github.com/Conceptual-Machines/magda-compose/internal/llm"
	"github.com/Conceptual-Machines/magda-compose/internal/midifile"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

type stubBackend struct {
	calls int
	entry catalog.ModelEntry
}

func (s *stubBackend) Generate(_ context.Context, entry catalog.ModelEntry, seed *models.NoteTimeline, _, _ float64) (*models.NoteTimeline, error) {
	s.calls++
	s.entry = entry
	return seed.Clone(), nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

func TestRegistry_Lookup(t *testing.T) {
	bundleDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, "basic_rnn.mag"), []byte("bundle"), 0o600))

	cat := testCatalog(t)
	require.NoError(t, cat.RegisterModel(catalog.ModelEntry{Name: "openai_melody", Kind: catalog.ModelKindLLM, Provider: "openai"}))

	registry := NewRegistry(cat, bundleDir)
	registry.Register(catalog.ModelKindScript, &stubBackend{})

	tests := []struct {
		name      string
		model     string
		available bool
	}{
		{"bundle present", models.ModelBasicRNN, true},
		{"bundle missing", models.ModelAttentionRNN, false},
		{"unknown model", "lookback_rnn", false},
		{"no llm backend", "openai_melody", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Check(tt.model)
			if tt.available {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)
		})
	}
}

func TestRegistry_GenerateDispatches(t *testing.T) {
	bundleDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, "attention_rnn.mag"), []byte("bundle"), 0o600))

	backend := &stubBackend{}
	registry := NewRegistry(testCatalog(t), bundleDir)
	registry.Register(catalog.ModelKindScript, backend)

	seed, err := SeedFragment("C4", 120)
	require.NoError(t, err)

	melody, err := registry.Generate(context.Background(), seed, 10, 1.0, models.ModelAttentionRNN)
	require.NoError(t, err)
	assert.Len(t, melody.Notes, 1)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "attention_rnn.mag", backend.entry.Bundle)

	_, err = registry.Generate(context.Background(), seed, 10, 1.0, "missing")
	assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)
	assert.Equal(t, 1, backend.calls)
}

func TestSeedFragment(t *testing.T) {
	seed, err := SeedFragment("", 132)
	require.NoError(t, err)

	require.Len(t, seed.Notes, 1)
	note := seed.Notes[0]
	assert.Equal(t, 60, note.Pitch)
	assert.Equal(t, 0.0, note.StartTime)
	assert.Equal(t, 0.5, note.EndTime)
	assert.Equal(t, 80, note.Velocity)
	assert.Equal(t, []models.TempoChange{{QPM: 132, Time: 0}}, seed.Tempos)

	seed, err = SeedFragment("A4", 120)
	require.NoError(t, err)
	assert.Equal(t, 69, seed.Notes[0].Pitch)

	_, err = SeedFragment("H9", 120)
	assert.ErrorIs(t, err, apperrors.ErrInput)
}

// fakeRunner writes a two-note melody to the --output_file argument
type fakeRunner struct {
	err  error
	args []string
}

func (f *fakeRunner) RunScript(_ context.Context, _ string, _ string, args ...string) (*exec.Result, error) {
	f.args = args
	if f.err != nil {
		return &exec.Result{ExitCode: 1}, f.err
	}
	var out string
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--output_file" {
			out = args[i+1]
		}
	}
	if out == "" {
		return nil, fmt.Errorf("no output file")
	}
	melody := &models.NoteTimeline{}
	melody.AddTempo(120, 0)
	melody.Add(
		models.NoteEvent{Pitch: 60, StartTime: 0, EndTime: 0.5, Velocity: 80},
		models.NoteEvent{Pitch: 64, StartTime: 0.5, EndTime: 1.0, Velocity: 90},
	)
	return &exec.Result{}, midifile.NewWriter().WriteFile(melody, out)
}

func TestScriptBackend_Generate(t *testing.T) {
	runner := &fakeRunner{}
	backend := NewScriptBackend(runner, "scripts/generate_melody.py", "bundles", t.TempDir())

	seed, err := SeedFragment("C4", 120)
	require.NoError(t, err)

	entry := catalog.ModelEntry{Name: models.ModelBasicRNN, Kind: catalog.ModelKindScript, Bundle: "basic_rnn.mag"}
	melody, err := backend.Generate(context.Background(), entry, seed, 12, 1.1)
	require.NoError(t, err)

	require.Len(t, melody.Notes, 2)
	assert.Equal(t, 64, melody.Notes[1].Pitch)
	assert.InDelta(t, 0.5, melody.Notes[1].StartTime, 0.002)
	assert.Contains(t, runner.args, filepath.Join("bundles", "basic_rnn.mag"))
	assert.Contains(t, runner.args, "12.00")
	assert.Contains(t, runner.args, "1.10")
}

func TestScriptBackend_Errors(t *testing.T) {
	seed, err := SeedFragment("C4", 120)
	require.NoError(t, err)
	entry := catalog.ModelEntry{Name: models.ModelBasicRNN, Kind: catalog.ModelKindScript, Bundle: "basic_rnn.mag"}

	t.Run("missing interpreter", func(t *testing.T) {
		runner := &fakeRunner{err: fmt.Errorf("%w: python3", apperrors.ErrToolNotInstalled)}
		_, err := NewScriptBackend(runner, "gen.py", "bundles", t.TempDir()).Generate(context.Background(), entry, seed, 8, 1)
		assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)
	})

	t.Run("script failure", func(t *testing.T) {
		cause := apperrors.NewProcessError("python3", "melody", 2, "boom", errors.New("exit status 2"))
		runner := &fakeRunner{err: cause}
		_, err := NewScriptBackend(runner, "gen.py", "bundles", t.TempDir()).Generate(context.Background(), entry, seed, 8, 1)
		require.Error(t, err)

		var procErr *apperrors.ProcessError
		assert.ErrorAs(t, err, &procErr)
		assert.Equal(t, 2, procErr.ExitCode)
	})
}

type fakeProvider struct {
	output  string
	err     error
	request *llm.GenerationRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	f.request = request
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerationResponse{RawOutput: f.output, InputTokens: 10, OutputTokens: 20}, nil
}

type tokenCounter struct{ input, output int }

func (c *tokenCounter) RecordTokenUsage(_ context.Context, _ string, in, out int) {
	c.input += in
	c.output += out
}

func TestLLMBackend_Generate(t *testing.T) {
	provider := &fakeProvider{output: `{"description":"rising","notes":[
		{"midiNoteNumber":60,"velocity":80,"startBeats":0,"durationBeats":1},
		{"midiNoteNumber":62,"velocity":200,"startBeats":1,"durationBeats":0.5},
		{"midiNoteNumber":64,"velocity":80,"startBeats":40,"durationBeats":1}
	]}`}
	counter := &tokenCounter{}

	backend := NewLLMBackend(nil, counter)
	backend.AddProvider("openai", provider, "gpt-5-mini")

	seed, err := SeedFragment("C4", 120)
	require.NoError(t, err)

	entry := catalog.ModelEntry{Name: "openai_melody", Kind: catalog.ModelKindLLM, Provider: "openai"}
	melody, err := backend.Generate(context.Background(), entry, seed, 10, 0.9)
	require.NoError(t, err)

	// the note at beat 40 (20 s) is past the 10 s duration
	require.Len(t, melody.Notes, 2)
	assert.InDelta(t, 0.5, melody.Notes[1].StartTime, 1e-9)
	assert.InDelta(t, 0.75, melody.Notes[1].EndTime, 1e-9)
	assert.Equal(t, 127, melody.Notes[1].Velocity)

	require.NotNil(t, provider.request)
	assert.Equal(t, "gpt-5-mini", provider.request.Model)
	assert.InDelta(t, 0.9, provider.request.Temperature, 1e-9)
	assert.Contains(t, provider.request.Input, "Length: 20.00 beats")
	assert.Equal(t, 10, counter.input)
	assert.Equal(t, 20, counter.output)
}

func TestLLMBackend_Errors(t *testing.T) {
	seed, err := SeedFragment("C4", 120)
	require.NoError(t, err)

	backend := NewLLMBackend(nil, nil)
	_, err = backend.Generate(context.Background(), catalog.ModelEntry{Name: "gemini_melody", Provider: "gemini"}, seed, 8, 1)
	assert.ErrorIs(t, err, apperrors.ErrModelUnavailable)

	backend.AddProvider("openai", &fakeProvider{output: "not json"}, "gpt-5-mini")
	_, err = backend.Generate(context.Background(), catalog.ModelEntry{Name: "openai_melody", Provider: "openai"}, seed, 8, 1)
	assert.Error(t, err)

	backend.AddProvider("openai", &fakeProvider{err: errors.New("rate limited")}, "gpt-5-mini")
	_, err = backend.Generate(context.Background(), catalog.ModelEntry{Name: "openai_melody", Provider: "openai"}, seed, 8, 1)
	assert.ErrorContains(t, err, "rate limited")
}

func TestNotesToTimeline(t *testing.T) {
	melody := NotesToTimeline([]llm.MelodyNote{
		{MIDINoteNumber: 130, Velocity: 0, StartBeats: 0, DurationBeats: 2},
		{MIDINoteNumber: 60, Velocity: 90, StartBeats: 2, DurationBeats: 0},
	}, 60, 30)

	require.Len(t, melody.Notes, 1)
	assert.Equal(t, 127, melody.Notes[0].Pitch)
	assert.Equal(t, 1, melody.Notes[0].Velocity)
	assert.Equal(t, 2.0, melody.Notes[0].EndTime)
	assert.Equal(t, 2.0, melody.TotalTime)
}
