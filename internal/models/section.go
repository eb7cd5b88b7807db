package models

// SectionType is the structural role of a section
type SectionType string

const (
	SectionIntro  SectionType = "intro"
	SectionVerse  SectionType = "verse"
	SectionChorus SectionType = "chorus"
	SectionBridge SectionType = "bridge"
	SectionOutro  SectionType = "outro"
)

// Multiplier returns the tempo multiplier relative to the base tempo
func (s SectionType) Multiplier() float64 {
	switch s {
	case SectionChorus:
		return 1.1
	case SectionBridge:
		return 0.9
	case SectionOutro:
		return 0.8
	default:
		return 1.0
	}
}

// Section is a fixed-length span of the arrangement
type Section struct {
	Type      SectionType `json:"type"`
	StartTime float64     `json:"start_time"`
	Duration  float64     `json:"duration"`
	Tempo     int         `json:"tempo"`
}

// Chord is a set of absolute MIDI pitches
type Chord []int

// ChordProgression is an ordered chord loop
type ChordProgression []Chord
