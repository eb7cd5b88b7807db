package arranger

import (
	"math/rand"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Arpeggio layer constants
const (
	arpeggioStep        = 0.25
	arpeggioNoteLength  = arpeggioStep * 0.8
	arpeggioVelocity    = 85
	arpeggioLeadProgram = 80
)

// ArpeggioOrder returns the chord pitches in pattern order. The input chord is
// never modified. rng is only used by the random pattern and may be nil for
// the others.
func ArpeggioOrder(pattern models.ArpeggioPattern, chord []int, rng *rand.Rand) []int {
	switch pattern {
	case models.ArpeggioDown:
		return reverseSlice(chord)
	case models.ArpeggioUpDown:
		out := append([]int(nil), chord...)
		if len(chord) > 1 {
			out = append(out, reverseSlice(chord[:len(chord)-1])...)
		}
		return out
	case models.ArpeggioRandom:
		out := append([]int(nil), chord...)
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	default:
		return append([]int(nil), chord...)
	}
}

// arpeggioProgram uses the melody program unless it is the default piano or
// not a melodic program
func arpeggioProgram(melody int) int {
	if melody == models.ProgramPiano || !models.IsMelodicProgram(melody) {
		return arpeggioLeadProgram
	}
	return melody
}
