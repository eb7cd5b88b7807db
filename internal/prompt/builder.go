package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Builder builds prompts for the LLM melody backends
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// MelodyPrompt is a system prompt plus the user input of one melody request
type MelodyPrompt struct {
	System string
	Input  string
}

// BuildMelodyPrompt describes the seed and the target length in beats
func (b *Builder) BuildMelodyPrompt(seed *models.NoteTimeline, durationSeconds float64, temperature float64) (*MelodyPrompt, error) {
	system, err := b.loader.GetMelodyInstructions()
	if err != nil {
		return nil, fmt.Errorf("failed to load melody instructions: %w", err)
	}

	tempo := seedTempo(seed)
	secondsPerBeat := 60.0 / tempo
	totalBeats := durationSeconds / secondsPerBeat

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tempo: %.0f bpm\n", tempo)
	fmt.Fprintf(&sb, "Length: %.2f beats\n", totalBeats)
	fmt.Fprintf(&sb, "Temperature: %.2f\n", temperature)
	sb.WriteString("Seed notes (midiNoteNumber, velocity, startBeats, durationBeats):\n")
	if seed != nil {
		for _, n := range seed.Notes {
			fmt.Fprintf(&sb, "- %d, %d, %.3f, %.3f\n",
				n.Pitch, n.Velocity, n.StartTime/secondsPerBeat, n.Duration()/secondsPerBeat)
		}
	}

	return &MelodyPrompt{System: system, Input: sb.String()}, nil
}

func seedTempo(seed *models.NoteTimeline) float64 {
	if seed != nil && len(seed.Tempos) > 0 && seed.Tempos[0].QPM > 0 {
		return seed.Tempos[0].QPM
	}
	return float64(models.DefaultDefaults().Tempo)
}
