package catalog

import (
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// DrumsNone is the drum preset that disables the drum layer
const DrumsNone = "none"

// TempoRange is an inclusive bpm range
type TempoRange struct {
	Min int
	Max int
}

// Midpoint uses integer division
func (r TempoRange) Midpoint() int {
	return (r.Min + r.Max) / 2
}

// TemperatureRange is a sampling temperature range
type TemperatureRange struct {
	Min float64
	Max float64
}

// Midpoint returns the centre of the range
func (r TemperatureRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// Profile is one keyword entry of the profile table. Nil fields are not carried
// by the entry and are skipped by the resolver's first-match scans.
type Profile struct {
	Keyword          string
	Tempo            *TempoRange
	Temperature      *TemperatureRange
	MelodyInstrument *int
	BassInstrument   *int
	ChordInstrument  *int
	PadInstrument    *int
	MajorKey         *bool
	Progression      models.ProgressionType
	DrumPreset       string
	AddArpeggio      bool
}

// IsGenre reports whether the entry names a genre (carries a tempo range)
func (p Profile) IsGenre() bool {
	return p.Tempo != nil
}

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

// DefaultProfiles returns the profile table in scan order
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Keyword:          "rock",
			Tempo:            &TempoRange{120, 180},
			MelodyInstrument: intp(29),
			BassInstrument:   intp(34),
			ChordInstrument:  intp(30),
			Progression:      models.ProgressionRock,
			DrumPreset:       "rock",
		},
		{
			Keyword:          "pop",
			Tempo:            &TempoRange{100, 140},
			MelodyInstrument: intp(0),
			BassInstrument:   intp(33),
			ChordInstrument:  intp(27),
			PadInstrument:    intp(88),
			Progression:      models.ProgressionPop,
			DrumPreset:       "pop",
		},
		{
			Keyword:          "jazz",
			Tempo:            &TempoRange{80, 120},
			MelodyInstrument: intp(26),
			BassInstrument:   intp(32),
			ChordInstrument:  intp(0),
			PadInstrument:    intp(48),
			Progression:      models.ProgressionJazz,
			DrumPreset:       "jazz",
		},
		{
			Keyword:          "classical",
			Tempo:            &TempoRange{60, 100},
			MelodyInstrument: intp(40),
			BassInstrument:   intp(43),
			ChordInstrument:  intp(48),
			Progression:      models.ProgressionClassical,
			DrumPreset:       DrumsNone,
		},
		{
			Keyword:          "electronic",
			Tempo:            &TempoRange{110, 160},
			MelodyInstrument: intp(80),
			BassInstrument:   intp(38),
			ChordInstrument:  intp(90),
			PadInstrument:    intp(91),
			Progression:      models.ProgressionElectronic,
			DrumPreset:       "electronic",
		},
		{Keyword: "happy", MajorKey: boolp(true), Temperature: &TemperatureRange{0.8, 1.2}},
		{Keyword: "sad", MajorKey: boolp(false), Temperature: &TemperatureRange{0.5, 0.9}},
		{Keyword: "lead synth", MelodyInstrument: intp(80)},
		{Keyword: "bass synth", BassInstrument: intp(38)},
		{Keyword: "pad synth", PadInstrument: intp(90)},
		{Keyword: "strings", PadInstrument: intp(48)},
		{Keyword: "choir", PadInstrument: intp(52)},
		{Keyword: "arpeggio", AddArpeggio: true},
	}
}
