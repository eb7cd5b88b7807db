package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	rock, ok := c.Profile("Rock")
	require.True(t, ok)
	assert.True(t, rock.IsGenre())

	happy, ok := c.Profile("happy")
	require.True(t, ok)
	assert.False(t, happy.IsGenre())
	assert.InDelta(t, 1.0, happy.Temperature.Midpoint(), 1e-9)

	_, ok = c.Profile("polka")
	assert.False(t, ok)

	_, ok = c.Preset(" LOFI ")
	assert.True(t, ok)
}

func TestTempoRange_MidpointTruncates(t *testing.T) {
	assert.Equal(t, 90, TempoRange{Min: 80, Max: 101}.Midpoint())
}

func TestLexicon(t *testing.T) {
	l := NewLexicon(DefaultInstruments())

	tests := []struct {
		name    string
		program int
		ok      bool
	}{
		{"piano", 0, true},
		{" Violin ", 40, true},
		{"synth strings", 50, true},
		{"drums", models.ProgramDrums, true},
		{"kazoo", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, ok := l.Program(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.program, program)
		})
	}

	assert.Equal(t, "Violin", l.NameFor(40))
	assert.Equal(t, "Drums", l.NameFor(models.ProgramDrums))
	assert.Equal(t, "Unknown (127)", l.NameFor(127))

	pad := 52
	assert.Equal(t, "Voice Aahs", l.PadNameFor(&pad))
	assert.Equal(t, "None", l.PadNameFor(nil))
	unmapped := 99
	assert.Equal(t, "None", l.PadNameFor(&unmapped))
}

func TestModelRegistry(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	entry, ok := c.Model(models.ModelAttentionRNN)
	require.True(t, ok)
	assert.Equal(t, ModelKindScript, entry.Kind)
	assert.Equal(t, "attention_rnn.mag", entry.Bundle)

	require.NoError(t, c.RegisterModel(ModelEntry{Name: models.ModelOpenAIMelody, Kind: ModelKindLLM, Provider: "openai"}))
	require.NoError(t, c.RegisterModel(ModelEntry{Name: models.ModelOpenAIMelody, Kind: ModelKindLLM, Provider: "gemini"}))
	entry, ok = c.Model(models.ModelOpenAIMelody)
	require.True(t, ok)
	assert.Equal(t, "gemini", entry.Provider)
	assert.Len(t, c.Models, 3)

	assert.Error(t, c.RegisterModel(ModelEntry{}))
}

func TestModelFromText(t *testing.T) {
	model, ok := ModelFromText("use the attention rnn please")
	assert.True(t, ok)
	assert.Equal(t, models.ModelAttentionRNN, model)

	model, ok = ModelFromText("basic rnn")
	assert.True(t, ok)
	assert.Equal(t, models.ModelBasicRNN, model)

	_, ok = ModelFromText("no model here")
	assert.False(t, ok)
}

func TestPresets(t *testing.T) {
	_, err := ParsePresets([]byte("presets:\n  - tempo: 90\n"))
	assert.ErrorContains(t, err, "no name")

	_, err = ParsePresets([]byte("presets: ["))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  - name: LoFi\n    tempo: 70\n  - name: march\n    tempo: 112\n    add_drums: true\n"), 0o600))

	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.MergePresetsFile(path))

	lofi, ok := c.Preset("lofi")
	require.True(t, ok)
	require.NotNil(t, lofi.Tempo)
	assert.Equal(t, 70, *lofi.Tempo)
	assert.Nil(t, lofi.Temperature)

	assert.Contains(t, PresetNames(c.Presets), "march")
	assert.Error(t, c.MergePresetsFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
