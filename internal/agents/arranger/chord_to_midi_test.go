package arranger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func TestChordToMIDI(t *testing.T) {
	tests := []struct {
		name          string
		chordSymbol   string
		octave        int
		expectedNotes []int
		expectError   bool
	}{
		{"C major", "C", 4, []int{48, 52, 55}, false},
		{"E minor", "Em", 4, []int{52, 55, 59}, false},
		{"A minor 7th", "Am7", 4, []int{57, 60, 64, 67}, false},
		{"C major 7th", "Cmaj7", 4, []int{48, 52, 55, 59}, false},
		{"library register", "C", ChordLibraryOctave, []int{60, 64, 67}, false},
		{"flat root", "Bb", ChordLibraryOctave, []int{70, 74, 77}, false},
		{"invalid root", "H", 4, nil, true},
		{"empty", "", 4, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ChordToMIDI(tt.chordSymbol, tt.octave)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNotes, notes)
		})
	}
}

func TestChordToMIDI_Inversion(t *testing.T) {
	notes, err := ChordToMIDI("Em/G", 4)
	require.NoError(t, err)

	// bass G one octave below, then E G B
	assert.Equal(t, []int{43, 52, 55, 59}, notes)
}

func TestChordQualities(t *testing.T) {
	tests := []struct {
		name        string
		chordSymbol string
		intervals   []int
	}{
		{"major", "C", []int{0, 4, 7}},
		{"minor", "Cm", []int{0, 3, 7}},
		{"diminished", "Cdim", []int{0, 3, 6}},
		{"augmented", "Caug", []int{0, 4, 8}},
		{"sus2", "Csus2", []int{0, 2, 7}},
		{"sus4", "Csus4", []int{0, 5, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ChordToMIDI(tt.chordSymbol, ChordLibraryOctave)
			require.NoError(t, err)
			require.Len(t, notes, len(tt.intervals))
			for i, interval := range tt.intervals {
				assert.Equal(t, interval, notes[i]-60, "note %d", i)
			}
		})
	}
}

func TestNoteNameToMIDI(t *testing.T) {
	tests := []struct {
		noteName     string
		expectedMIDI int
		expectError  bool
	}{
		{"C4", 60, false},
		{"C0", 12, false},
		{"C-1", 0, false},
		{"E1", 28, false},
		{"A4", 69, false},
		{"F#3", 54, false},
		{"Bb2", 46, false},
		{"e1", 28, false},
		{"G9", 127, false},
		{"C", 0, true},
		{"X4", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.noteName, func(t *testing.T) {
			midiNote, err := NoteNameToMIDI(tt.noteName)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedMIDI, midiNote)
		})
	}
}

func TestProgressionFromSymbols(t *testing.T) {
	progression, err := ProgressionFromSymbols([]string{"C", "G", "Am", "F"})
	require.NoError(t, err)

	assert.Equal(t, models.ChordProgression{
		{60, 64, 67},
		{67, 71, 74},
		{69, 72, 76},
		{65, 69, 72},
	}, progression)

	_, err = ProgressionFromSymbols(nil)
	assert.Error(t, err)

	_, err = ProgressionFromSymbols([]string{"C", "Q7"})
	assert.Error(t, err)
}
