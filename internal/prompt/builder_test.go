package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func TestBuildMelodyPrompt(t *testing.T) {
	seed := &models.NoteTimeline{}
	seed.AddTempo(90, 0)
	seed.Add(models.NoteEvent{Pitch: 62, StartTime: 0, EndTime: 0.5, Velocity: 80})

	p, err := NewPromptBuilder().BuildMelodyPrompt(seed, 20, 1.3)
	require.NoError(t, err)

	assert.Contains(t, p.System, "monophonic melody")
	assert.Contains(t, p.Input, "Tempo: 90 bpm")
	assert.Contains(t, p.Input, "Length: 30.00 beats")
	assert.Contains(t, p.Input, "Temperature: 1.30")
	assert.Contains(t, p.Input, "- 62, 80, 0.000, 0.750")
}

func TestBuildMelodyPrompt_DefaultTempo(t *testing.T) {
	p, err := NewPromptBuilder().BuildMelodyPrompt(nil, 10, 1.0)
	require.NoError(t, err)
	assert.Contains(t, p.Input, "Tempo: 120 bpm")
	assert.Contains(t, p.Input, "Length: 20.00 beats")
}
