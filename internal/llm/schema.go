package llm

const (
	// MIDI note number constraints
	midiNoteNumberMin = 0
	midiNoteNumberMax = 127

	// Velocity constraints
	velocityMin     = 1
	velocityMax     = 127
	velocityDefault = 100

	// Duration constraints
	durationBeatsMin = 0.01
)

// MelodyNote is one note of a melody returned by an LLM, positioned in beats
type MelodyNote struct {
	MIDINoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
}

// MelodyOutput is the decoded structured output of a melody request
type MelodyOutput struct {
	Description string       `json:"description"`
	Notes       []MelodyNote `json:"notes"`
}

// GetMelodyOutputSchema returns the JSON schema for a single-line melody
func GetMelodyOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"notes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"midiNoteNumber": map[string]any{"type": "integer", "minimum": midiNoteNumberMin, "maximum": midiNoteNumberMax},
						"velocity":       map[string]any{"type": "integer", "minimum": velocityMin, "maximum": velocityMax, "default": velocityDefault},
						"startBeats":     map[string]any{"type": "number", "minimum": 0},
						"durationBeats":  map[string]any{"type": "number", "minimum": durationBeatsMin},
					},
					"required":             []string{"midiNoteNumber", "velocity", "startBeats", "durationBeats"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"description", "notes"},
		"additionalProperties": false,
	}
}

// MelodySchema wraps the melody schema for a GenerationRequest
func MelodySchema() *OutputSchema {
	return &OutputSchema{
		Name:        "melody",
		Description: "A monophonic melody line",
		Schema:      GetMelodyOutputSchema(),
	}
}
