package prompt

import (
	"regexp"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

var (
	tempoPattern       = regexp.MustCompile(`(\d+)\s*(bpm|tempo)`)
	lengthPattern      = regexp.MustCompile(`(\d+)\s*(seconds|s|second)`)
	temperaturePattern = regexp.MustCompile(`temperature\s*[:=]?\s*(-?\d+\.?\d*)`)
	instrumentPattern  = regexp.MustCompile(`(?:instrument|midi)\s*(\d+)`)
	sectionPattern     = regexp.MustCompile(`\b(intro|verse|chorus|bridge|outro)\b`)
)

// tempoWords apply only when no explicit bpm is given; first match wins
var tempoWords = []struct {
	word  string
	tempo int
}{
	{"fast", 160},
	{"slow", 80},
	{"medium", 120},
}

// chordStyleFamilies are checked in priority order
var chordStyleFamilies = []struct {
	style    models.ChordStyle
	synonyms []string
}{
	{models.ChordStyleSeventh, []string{"seventh chord", "7th chord", "maj7", "major 7", "minor 7", "min7"}},
	{models.ChordStyleSus, []string{"sus chord", "suspended", "sus4", "sus2"}},
	{models.ChordStyleDiminished, []string{"diminished", "dim chord", "dim7", "o7"}},
	{models.ChordStyleAugmented, []string{"augmented", "aug chord", "aug7", "+7"}},
	{models.ChordStyleTransition, []string{"transition chord", "chromatic", "intermediate chord"}},
}

// arpeggioPatterns are matched as "<word> arpeggio" or "arpeggio <word>"
var arpeggioPatterns = []struct {
	words   []string
	pattern models.ArpeggioPattern
}{
	{[]string{"up-down", "up down"}, models.ArpeggioUpDown},
	{[]string{"down"}, models.ArpeggioDown},
	{[]string{"random"}, models.ArpeggioRandom},
}

// Fallback phrases when no lexicon name qualifies the layer
var bassSynonyms = []struct {
	phrase  string
	program int
}{
	{"acoustic bass", 32},
	{"electric bass", 33},
	{"synth bass", 38},
}

var chordSynonyms = []struct {
	phrase  string
	program int
}{
	{"piano chords", 0},
	{"guitar chords", 27},
}

var padSynonyms = []struct {
	word    string
	program int
}{
	{"strings", 48},
	{"choir", 52},
}

const (
	// defaultPadProgram is used for a bare "pad" keyword
	defaultPadProgram = 88

	complexTemperatureFloor = 1.2
	calmTemperatureCeiling  = 0.8
	rockTemperatureCeiling  = 0.85
)
