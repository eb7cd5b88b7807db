package catalog

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Instrument maps a lexicon name to a program number
type Instrument struct {
	Name    string
	Program int
}

// DefaultInstruments returns the instrument lexicon in scan order
func DefaultInstruments() []Instrument {
	return []Instrument{
		{"piano", 0}, {"acoustic piano", 0}, {"grand piano", 0},
		{"electric piano", 4}, {"epiano", 4},
		{"organ", 19}, {"church organ", 19},
		{"guitar", 24}, {"acoustic guitar", 24},
		{"electric guitar", 27}, {"clean electric guitar", 27},
		{"distortion guitar", 29}, {"distorted guitar", 29},
		{"overdrive guitar", 30},
		{"bass", 33}, {"finger bass", 33}, {"acoustic bass", 32}, {"slap bass", 36},
		{"violin", 40}, {"viola", 41},
		{"cello", 42},
		{"contrabass", 43},
		{"strings", 48}, {"string ensemble", 48}, {"orchestra strings", 48}, {"slow strings", 49}, {"synth strings", 50},
		{"trumpet", 56}, {"trombone", 57}, {"tuba", 58}, {"french horn", 60},
		{"saxophone", 66}, {"alto sax", 66}, {"tenor sax", 67},
		{"flute", 73}, {"piccolo", 72}, {"oboe", 68}, {"clarinet", 71},
		{"synth pad", 88}, {"new age pad", 88}, {"warm pad", 89}, {"polysynth pad", 90},
		{"choir", 52}, {"voice aahs", 52},
		{"drums", models.ProgramDrums},
	}
}

// Lexicon is the ordered instrument lexicon with its display inverse
type Lexicon struct {
	entries []Instrument
	names   map[int]string
}

// NewLexicon builds a lexicon. For programs with several names the last one
// in table order is used for display.
func NewLexicon(entries []Instrument) *Lexicon {
	names := make(map[int]string, len(entries))
	for _, e := range entries {
		names[e.Program] = titleCase(e.Name)
	}
	names[models.ProgramDrums] = "Drums"
	return &Lexicon{entries: entries, names: names}
}

// Entries returns the lexicon in scan order
func (l *Lexicon) Entries() []Instrument {
	return l.entries
}

// Program looks up a program by exact name
func (l *Lexicon) Program(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range l.entries {
		if e.Name == name {
			return e.Program, true
		}
	}
	return 0, false
}

// NameFor returns the display name of a program, "Unknown (N)" if unmapped
func (l *Lexicon) NameFor(program int) string {
	if name, ok := l.names[program]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", program)
}

// PadNameFor returns "None" for an absent pad
func (l *Lexicon) PadNameFor(program *int) string {
	if program == nil {
		return "None"
	}
	if name, ok := l.names[*program]; ok {
		return name
	}
	return "None"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
