package arranger

import (
	"math"
	"math/rand"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Grid constants shared by the chord-bound layers
const (
	MeasureDuration = 2.0

	chordNoteLength = 1.5
	chordVelocity   = 70

	bassPitch      = 36
	bassStep       = 2
	bassNoteLength = 1.5
	bassVelocity   = 80

	kickPitch      = 36
	snarePitch     = 38
	hihatPitch     = 42
	kickLength     = 0.2
	snareOffset    = 1.0
	snareLength    = 0.2
	hihatOffset    = 0.5
	hihatLength    = 0.1
	kickVelocity   = 100
	snareVelocity  = 90
	hihatVelocity  = 70
	padVelocity    = 60
	padOctaveShift = 12
	padVoices      = 3
)

// Engine synthesizes the accompaniment layers around a melody
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine. rng drives the random arpeggio pattern; a nil
// rng gets a time-independent fixed seed.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{rng: rng}
}

// gridSlot is one chord occurrence on the measure grid
type gridSlot struct {
	start float64
	chord models.Chord
}

// chordGrid lays the progression over the requested length. Iteration stops
// at the first slot whose start reaches the length, which abandons all later
// repetitions too.
func chordGrid(length int, progression models.ChordProgression) []gridSlot {
	if len(progression) == 0 || length <= 0 {
		return nil
	}
	total := float64(len(progression)) * MeasureDuration
	reps := int(math.Floor(float64(length)/total)) + 1
	limit := float64(length)

	var slots []gridSlot
grid:
	for rep := 0; rep < reps; rep++ {
		for i, chord := range progression {
			start := float64(rep)*total + float64(i)*MeasureDuration
			if start >= limit {
				break grid
			}
			slots = append(slots, gridSlot{start: start, chord: chord})
		}
	}
	return slots
}

// BuildTimeline returns a new timeline holding the melody notes followed by
// the chord, bass, drum, pad and arpeggio layers. The melody is not modified.
func (e *Engine) BuildTimeline(req models.ResolvedRequest, melody *models.NoteTimeline, progression models.ChordProgression) *models.NoteTimeline {
	timeline := &models.NoteTimeline{}
	if melody != nil {
		timeline.Add(melody.Notes...)
	}

	slots := chordGrid(req.Length, progression)

	timeline.Add(chordLayer(slots, req.ChordInstrument)...)
	timeline.Add(bassLayer(req.Length, req.BassInstrument)...)
	if req.AddDrums {
		timeline.Add(drumLayer(req.Length)...)
	}
	if req.PadInstrument != nil {
		timeline.Add(padLayer(slots, *req.PadInstrument)...)
	}
	if req.AddArpeggio {
		timeline.Add(e.arpeggioLayer(slots, req)...)
	}
	return timeline
}

func chordLayer(slots []gridSlot, program int) []models.NoteEvent {
	var notes []models.NoteEvent
	for _, s := range slots {
		for _, pitch := range s.chord {
			notes = append(notes, models.NoteEvent{
				Pitch:     pitch,
				StartTime: s.start,
				EndTime:   s.start + chordNoteLength,
				Velocity:  chordVelocity,
				Channel:   models.ChannelChords,
				Program:   program,
			})
		}
	}
	return notes
}

// bassLayer places the bass every two seconds independent of the chord grid
func bassLayer(length int, program int) []models.NoteEvent {
	var notes []models.NoteEvent
	for i := 0; i < length; i += bassStep {
		start := float64(i)
		notes = append(notes, models.NoteEvent{
			Pitch:     bassPitch,
			StartTime: start,
			EndTime:   start + bassNoteLength,
			Velocity:  bassVelocity,
			Channel:   models.ChannelBass,
			Program:   program,
		})
	}
	return notes
}

func drumLayer(length int) []models.NoteEvent {
	hit := func(pitch int, start, dur float64, velocity int) models.NoteEvent {
		return models.NoteEvent{
			Pitch:     pitch,
			StartTime: start,
			EndTime:   start + dur,
			Velocity:  velocity,
			Channel:   models.ChannelDrums,
			Program:   models.ProgramDrums,
			IsDrum:    true,
		}
	}

	var notes []models.NoteEvent
	for i := 0; i < length; i++ {
		t := float64(i)
		notes = append(notes, hit(kickPitch, t, kickLength, kickVelocity))
		if math.Mod(t, MeasureDuration) == 0 {
			notes = append(notes, hit(snarePitch, t+snareOffset, snareLength, snareVelocity))
		}
		notes = append(notes,
			hit(hihatPitch, t, hihatLength, hihatVelocity),
			hit(hihatPitch, t+hihatOffset, hihatLength, hihatVelocity),
		)
	}
	return notes
}

// padLayer holds the first three chord pitches an octave down for the full measure
func padLayer(slots []gridSlot, program int) []models.NoteEvent {
	var notes []models.NoteEvent
	for _, s := range slots {
		voices := min(padVoices, len(s.chord))
		for _, pitch := range s.chord[:voices] {
			notes = append(notes, models.NoteEvent{
				Pitch:     pitch - padOctaveShift,
				StartTime: s.start,
				EndTime:   s.start + MeasureDuration,
				Velocity:  padVelocity,
				Channel:   models.ChannelPad,
				Program:   program,
			})
		}
	}
	return notes
}

// arpeggioLayer walks each chord in pattern order at a fixed step. Notes of a
// chord stop at the end of its measure or at the requested length.
func (e *Engine) arpeggioLayer(slots []gridSlot, req models.ResolvedRequest) []models.NoteEvent {
	program := arpeggioProgram(req.MelodyInstrument)
	limit := float64(req.Length)

	var notes []models.NoteEvent
	for _, s := range slots {
		pattern := ArpeggioOrder(req.ArpeggioPattern, s.chord, e.rng)
		for j, pitch := range pattern {
			t := s.start + float64(j)*arpeggioStep
			if t >= s.start+MeasureDuration || t >= limit {
				break
			}
			notes = append(notes, models.NoteEvent{
				Pitch:     pitch,
				StartTime: t,
				EndTime:   t + arpeggioNoteLength,
				Velocity:  arpeggioVelocity,
				Channel:   models.ChannelArpeggio,
				Program:   program,
			})
		}
	}
	return notes
}

// ApplyTempoCurve replaces the tempo entries of a timeline. A timeline with no
// curve gets the base tempo at time zero.
func ApplyTempoCurve(t *models.NoteTimeline, baseTempo int, curve []models.TempoChange) {
	if t.Frozen() {
		return
	}
	t.Tempos = nil
	if len(curve) == 0 {
		t.AddTempo(float64(baseTempo), 0)
		return
	}
	for _, c := range curve {
		t.AddTempo(c.QPM, c.Time)
	}
}
