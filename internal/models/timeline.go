package models

// Layer channels. Any other channel value marks a note that has not been
// claimed by an arrangement layer (raw generator output).
const (
	ChannelMelody   = 0
	ChannelBass     = 1
	ChannelChords   = 2
	ChannelPad      = 3
	ChannelArpeggio = 4
	ChannelDrums    = 9
)

// ProgramDrums is the drum-kit sentinel used wherever a program number is expected
const ProgramDrums = 128

// ProgramPiano is the default melody instrument
const ProgramPiano = 0

// IsLayerChannel reports whether ch belongs to a known arrangement layer
func IsLayerChannel(ch int) bool {
	switch ch {
	case ChannelBass, ChannelChords, ChannelPad, ChannelArpeggio, ChannelDrums:
		return true
	}
	return false
}

// IsMelodicProgram reports whether p is a playable General MIDI program (not the drum sentinel)
func IsMelodicProgram(p int) bool {
	return p >= 0 && p <= 127
}

// NoteEvent represents a single note with absolute timing in seconds
type NoteEvent struct {
	Pitch     int     `json:"pitch"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Velocity  int     `json:"velocity"`
	Channel   int     `json:"channel"`
	Program   int     `json:"program"`
	IsDrum    bool    `json:"is_drum"`
}

// Duration returns the note length in seconds
func (n NoteEvent) Duration() float64 {
	return n.EndTime - n.StartTime
}

// TempoChange is one entry of the tempo curve
type TempoChange struct {
	QPM  float64 `json:"qpm"`
	Time float64 `json:"time"`
}

// NoteTimeline is the insertion-ordered note list of one arrangement run
type NoteTimeline struct {
	Notes     []NoteEvent   `json:"notes"`
	Tempos    []TempoChange `json:"tempos"`
	TotalTime float64       `json:"total_time"`
	frozen    bool
}

// Add appends notes and extends TotalTime. It is a no-op once the timeline is frozen.
func (t *NoteTimeline) Add(notes ...NoteEvent) {
	if t.frozen {
		return
	}
	for _, n := range notes {
		t.Notes = append(t.Notes, n)
		if n.EndTime > t.TotalTime {
			t.TotalTime = n.EndTime
		}
	}
}

// AddTempo appends a tempo change. It is a no-op once the timeline is frozen.
func (t *NoteTimeline) AddTempo(qpm, at float64) {
	if t.frozen {
		return
	}
	t.Tempos = append(t.Tempos, TempoChange{QPM: qpm, Time: at})
}

// Freeze marks the timeline immutable; later Add calls are ignored
func (t *NoteTimeline) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze has been called
func (t *NoteTimeline) Frozen() bool {
	return t.frozen
}

// Clone returns an unfrozen deep copy
func (t *NoteTimeline) Clone() *NoteTimeline {
	if t == nil {
		return &NoteTimeline{}
	}
	c := &NoteTimeline{
		Notes:     make([]NoteEvent, len(t.Notes)),
		Tempos:    make([]TempoChange, len(t.Tempos)),
		TotalTime: t.TotalTime,
	}
	copy(c.Notes, t.Notes)
	copy(c.Tempos, t.Tempos)
	return c
}

// CountByChannel returns the number of notes per channel
func (t *NoteTimeline) CountByChannel() map[int]int {
	counts := make(map[int]int)
	for _, n := range t.Notes {
		counts[n.Channel]++
	}
	return counts
}

// RecomputeTotalTime sets TotalTime to the latest note end
func (t *NoteTimeline) RecomputeTotalTime() {
	total := 0.0
	for _, n := range t.Notes {
		if n.EndTime > total {
			total = n.EndTime
		}
	}
	t.TotalTime = total
}
