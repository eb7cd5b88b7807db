package arranger

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// ChordLibraryOctave places chord symbols in the same register as the built-in
// progression tables (C -> 60)
const ChordLibraryOctave = 5

// ChordToMIDI converts chord symbols to MIDI note numbers
// Supports: C, Em, Am7, Cmaj7, Emin/G (inversions), etc.
// Returns slice of MIDI note numbers (0-127) for the chord
func ChordToMIDI(chordSymbol string, octave int) ([]int, error) {
	// Parse bass note if present (e.g., "Emin/G" -> chord="Emin", bass="G")
	baseChord := chordSymbol
	bassNote := ""
	if strings.Contains(chordSymbol, "/") {
		parts := strings.Split(chordSymbol, "/")
		if len(parts) == 2 {
			baseChord = strings.TrimSpace(parts[0])
			bassNote = strings.TrimSpace(parts[1])
		}
	}

	// Parse root note
	root, err := parseRootNote(baseChord)
	if err != nil {
		return nil, fmt.Errorf("invalid chord root: %w", err)
	}

	// Calculate root MIDI note (C4 = 60)
	rootMIDI := noteToMIDI(root, octave)

	// Determine chord quality and extensions
	quality := parseChordQuality(baseChord)
	extensions := parseExtensions(baseChord)

	// Build chord intervals (semitones from root)
	intervals := buildChordIntervals(quality, extensions)

	// Convert intervals to MIDI notes
	notes := make([]int, 0, len(intervals)+1)
	for _, interval := range intervals {
		midiNote := rootMIDI + interval
		if midiNote < 0 || midiNote > 127 {
			continue // Skip out-of-range notes
		}
		notes = append(notes, midiNote)
	}

	// Add bass note if specified (inversion)
	if bassNote != "" {
		bassRoot, err := parseRootNote(bassNote)
		if err == nil {
			// Bass note typically one octave lower
			bassMIDI := noteToMIDI(bassRoot, octave-1)
			if bassMIDI >= 0 && bassMIDI <= 127 {
				// Prepend bass note
				notes = append([]int{bassMIDI}, notes...)
			}
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no valid MIDI notes generated for chord: %s", chordSymbol)
	}

	return notes, nil
}

// ProgressionFromSymbols converts chord symbols such as ["C", "G", "Am", "F"]
// into a progression in the library register
func ProgressionFromSymbols(symbols []string) (models.ChordProgression, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty progression")
	}
	progression := make(models.ChordProgression, 0, len(symbols))
	for _, symbol := range symbols {
		notes, err := ChordToMIDI(strings.TrimSpace(symbol), ChordLibraryOctave)
		if err != nil {
			return nil, fmt.Errorf("chord %q: %w", symbol, err)
		}
		progression = append(progression, models.Chord(notes))
	}
	return progression, nil
}

// NoteNameToMIDI converts a note name like "E1", "C4", "F#3", "Bb2" to MIDI note number
// Format: <note><accidental?><octave> where:
//   - note: A-G (case insensitive)
//   - accidental: # (sharp) or b (flat), optional
//   - octave: -1 to 9 (C4 = 60 = middle C)
func NoteNameToMIDI(noteName string) (int, error) {
	if len(noteName) < 2 {
		return 0, fmt.Errorf("note name too short: %s", noteName)
	}

	// Parse note letter (A-G)
	noteChar := strings.ToUpper(string(noteName[0]))
	if noteChar < "A" || noteChar > "G" {
		return 0, fmt.Errorf("invalid note letter: %s", noteChar)
	}

	// Note semitone offsets from C
	noteOffsets := map[string]int{
		"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
	}
	semitone := noteOffsets[noteChar]

	// Check for accidental (# or b)
	idx := 1
	if idx < len(noteName) {
		if noteName[idx] == '#' {
			semitone++
			idx++
		} else if noteName[idx] == 'b' {
			semitone--
			idx++
		}
	}

	// Parse octave (can be negative like -1)
	if idx >= len(noteName) {
		return 0, fmt.Errorf("missing octave in note name: %s", noteName)
	}

	octaveStr := noteName[idx:]
	var octave int
	_, err := fmt.Sscanf(octaveStr, "%d", &octave)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %s: %w", noteName, err)
	}

	// MIDI calculation: (octave + 1) * 12 + semitone
	// This gives C-1 = 0, C0 = 12, C4 = 60
	midiNote := (octave+1)*12 + semitone

	// Clamp to valid MIDI range
	if midiNote < 0 {
		midiNote = 0
	}
	if midiNote > 127 {
		midiNote = 127
	}

	return midiNote, nil
}

// Helper functions

func parseRootNote(chordSymbol string) (string, error) {
	if len(chordSymbol) == 0 {
		return "", fmt.Errorf("empty chord symbol")
	}

	// Extract root (first 1-2 chars: C, C#, Db, etc.)
	root := ""
	if len(chordSymbol) > 1 && (chordSymbol[1] == '#' || chordSymbol[1] == 'b') {
		root = chordSymbol[:2]
	} else {
		root = chordSymbol[:1]
	}

	// Validate root note
	validRoots := map[string]bool{
		"C": true, "C#": true, "Db": true, "D": true, "D#": true, "Eb": true,
		"E": true, "F": true, "F#": true, "Gb": true, "G": true, "G#": true,
		"Ab": true, "A": true, "A#": true, "Bb": true, "B": true,
	}

	if !validRoots[root] {
		return "", fmt.Errorf("invalid root note: %s", root)
	}

	return root, nil
}

func parseChordQuality(chordSymbol string) string {
	// Remove root note
	if len(chordSymbol) > 1 && (chordSymbol[1] == '#' || chordSymbol[1] == 'b') {
		chordSymbol = chordSymbol[2:]
	} else if len(chordSymbol) > 0 {
		chordSymbol = chordSymbol[1:]
	}

	// Check for quality markers
	if strings.HasPrefix(chordSymbol, "m") && !strings.HasPrefix(chordSymbol, "maj") && !strings.HasPrefix(chordSymbol, "min") {
		return "minor"
	}
	if strings.HasPrefix(chordSymbol, "dim") {
		return "diminished"
	}
	if strings.HasPrefix(chordSymbol, "aug") {
		return "augmented"
	}
	if strings.HasPrefix(chordSymbol, "sus2") {
		return "sus2"
	}
	if strings.HasPrefix(chordSymbol, "sus4") {
		return "sus4"
	}

	// Default to major
	return "major"
}

func parseExtensions(chordSymbol string) []string {
	extensions := []string{}

	// Remove root note first
	if len(chordSymbol) > 1 && (chordSymbol[1] == '#' || chordSymbol[1] == 'b') {
		chordSymbol = chordSymbol[2:]
	} else if len(chordSymbol) > 0 {
		chordSymbol = chordSymbol[1:]
	}

	// Extract extensions BEFORE removing quality markers
	// This prevents "maj7" from being corrupted to "aj7" by TrimPrefix("m")
	if strings.Contains(chordSymbol, "maj7") {
		extensions = append(extensions, "maj7")
		chordSymbol = strings.ReplaceAll(chordSymbol, "maj7", "")
	}
	if strings.Contains(chordSymbol, "min7") {
		extensions = append(extensions, "min7")
		chordSymbol = strings.ReplaceAll(chordSymbol, "min7", "")
	}

	// Now remove quality markers (after extracting maj7/min7)
	chordSymbol = strings.TrimPrefix(chordSymbol, "m")
	chordSymbol = strings.TrimPrefix(chordSymbol, "dim")
	chordSymbol = strings.TrimPrefix(chordSymbol, "aug")
	chordSymbol = strings.TrimPrefix(chordSymbol, "sus2")
	chordSymbol = strings.TrimPrefix(chordSymbol, "sus4")

	// Extract remaining extensions
	if strings.Contains(chordSymbol, "7") {
		extensions = append(extensions, "7")
		chordSymbol = strings.ReplaceAll(chordSymbol, "7", "")
	}
	if strings.Contains(chordSymbol, "9") {
		extensions = append(extensions, "9")
	}
	if strings.Contains(chordSymbol, "11") {
		extensions = append(extensions, "11")
	}
	if strings.Contains(chordSymbol, "13") {
		extensions = append(extensions, "13")
	}
	if strings.Contains(chordSymbol, "add9") {
		extensions = append(extensions, "add9")
	}
	if strings.Contains(chordSymbol, "add11") {
		extensions = append(extensions, "add11")
	}
	if strings.Contains(chordSymbol, "add13") {
		extensions = append(extensions, "add13")
	}

	return extensions
}

func buildChordIntervals(quality string, extensions []string) []int {
	var intervals []int

	// Base triad
	switch quality {
	case "major":
		intervals = []int{0, 4, 7} // Root, Major 3rd, Perfect 5th
	case "minor":
		intervals = []int{0, 3, 7} // Root, Minor 3rd, Perfect 5th
	case "diminished":
		intervals = []int{0, 3, 6} // Root, Minor 3rd, Diminished 5th
	case "augmented":
		intervals = []int{0, 4, 8} // Root, Major 3rd, Augmented 5th
	case "sus2":
		intervals = []int{0, 2, 7} // Root, Major 2nd, Perfect 5th
	case "sus4":
		intervals = []int{0, 5, 7} // Root, Perfect 4th, Perfect 5th
	default:
		intervals = []int{0, 4, 7} // Default to major
	}

	// Add extensions
	for _, ext := range extensions {
		switch ext {
		case "7", "min7":
			intervals = append(intervals, 10) // Minor 7th
		case "maj7":
			intervals = append(intervals, 11) // Major 7th
		case "9", "add9":
			intervals = append(intervals, 14) // Major 9th
		case "11", "add11":
			intervals = append(intervals, 17) // Perfect 11th
		case "13", "add13":
			intervals = append(intervals, 21) // Major 13th
		}
	}

	return intervals
}

func noteToMIDI(note string, octave int) int {
	// Note to semitone offset from C
	noteMap := map[string]int{
		"C":  0,
		"C#": 1, "Db": 1,
		"D":  2,
		"D#": 3, "Eb": 3,
		"E":  4,
		"F":  5,
		"F#": 6, "Gb": 6,
		"G":  7,
		"G#": 8, "Ab": 8,
		"A":  9,
		"A#": 10, "Bb": 10,
		"B": 11,
	}

	offset, ok := noteMap[note]
	if !ok {
		return 60 // Default to C4
	}

	// C4 = 60, so: (octave * 12) + offset
	return (octave * 12) + offset
}

func reverseSlice(s []int) []int {
	result := make([]int, len(s))
	for i, v := range s {
		result[len(s)-1-i] = v
	}
	return result
}
