package arranger

import (
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// MinNoteDuration is the shortest melodic note kept by Normalize
const MinNoteDuration = 0.5

// Normalize runs the post-processing pass over a timeline. Melodic notes
// shorter than MinNoteDuration are extended, and notes outside the layer
// channels are reclaimed into the melody channel with the melody program.
// Drum notes with a non-positive length are given one. The pass is skipped
// when melodyProgram is not a playable program and is idempotent.
func Normalize(t *models.NoteTimeline, melodyProgram int) {
	if t == nil || t.Frozen() || !models.IsMelodicProgram(melodyProgram) {
		return
	}
	for i := range t.Notes {
		n := &t.Notes[i]
		if n.IsDrum {
			if n.EndTime <= n.StartTime {
				n.EndTime = n.StartTime + hihatLength
			}
			continue
		}
		if n.Duration() < MinNoteDuration {
			n.EndTime = n.StartTime + MinNoteDuration
		}
		if !models.IsLayerChannel(n.Channel) {
			n.Channel = models.ChannelMelody
			n.Program = melodyProgram
		}
	}
	t.RecomputeTotalTime()
}
