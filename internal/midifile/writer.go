// Package midifile converts note timelines to and from Standard MIDI Files
package midifile

import (
	"fmt"
	"io"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// DefaultResolution is the number of ticks per quarter note
const DefaultResolution = 480

// fallbackQPM is used when a timeline carries no tempo
const fallbackQPM = 120.0

var channelNames = map[int]string{
	models.ChannelMelody:   "melody",
	models.ChannelBass:     "bass",
	models.ChannelChords:   "chords",
	models.ChannelPad:      "pad",
	models.ChannelArpeggio: "arpeggio",
	models.ChannelDrums:    "drums",
}

// Writer encodes timelines as format 1 files: a tempo track followed by one
// track per channel in channel order
type Writer struct {
	resolution uint16
}

// NewWriter creates a writer with DefaultResolution
func NewWriter() *Writer {
	return &Writer{resolution: DefaultResolution}
}

// event kinds at the same tick are ordered off, program, on
const (
	kindOff = iota
	kindProgram
	kindOn
)

type trackEvent struct {
	tick uint32
	kind int
	seq  int
	msg  []byte
}

// Encode builds the SMF for a timeline
func (w *Writer) Encode(t *models.NoteTimeline) (*smf.SMF, error) {
	if t == nil {
		return nil, fmt.Errorf("nil timeline")
	}
	tm := newTempoMap(w.resolution, t.Tempos, fallbackQPM)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(w.resolution)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("tempo"))
	var last uint32
	for _, seg := range tm.segments {
		tick := tm.ticksAt(seg.seconds)
		conductor.Add(tick-last, smf.MetaTempo(seg.qpm))
		last = tick
	}
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add tempo track: %w", err)
	}

	byChannel := make(map[int][]models.NoteEvent)
	for _, n := range t.Notes {
		ch := n.Channel
		if ch < 0 || ch > 15 {
			ch = models.ChannelMelody
		}
		byChannel[ch] = append(byChannel[ch], n)
	}
	channels := make([]int, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Ints(channels)

	for _, ch := range channels {
		track := w.channelTrack(uint8(ch), byChannel[ch], tm)
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add track for channel %d: %w", ch, err)
		}
	}
	return s, nil
}

func (w *Writer) channelTrack(ch uint8, notes []models.NoteEvent, tm *tempoMap) smf.Track {
	var events []trackEvent
	seq := 0
	push := func(tick uint32, kind int, msg []byte) {
		events = append(events, trackEvent{tick: tick, kind: kind, seq: seq, msg: msg})
		seq++
	}

	currentProgram := -1
	for _, n := range notes {
		start := tm.ticksAt(n.StartTime)
		end := tm.ticksAt(n.EndTime)
		if end <= start {
			end = start + 1
		}
		if ch != models.ChannelDrums && models.IsMelodicProgram(n.Program) && n.Program != currentProgram {
			push(start, kindProgram, gomidi.ProgramChange(ch, uint8(n.Program)))
			currentProgram = n.Program
		}
		key := uint8(clamp(n.Pitch, 0, 127))
		push(start, kindOn, gomidi.NoteOn(ch, key, uint8(clamp(n.Velocity, 1, 127))))
		push(end, kindOff, gomidi.NoteOff(ch, key))
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		if events[i].kind != events[j].kind {
			return events[i].kind < events[j].kind
		}
		return events[i].seq < events[j].seq
	})

	var track smf.Track
	name, ok := channelNames[int(ch)]
	if !ok {
		name = fmt.Sprintf("channel %d", ch)
	}
	track.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, e := range events {
		track.Add(e.tick-last, e.msg)
		last = e.tick
	}
	track.Close(0)
	return track
}

// WriteTo encodes a timeline to w
func (w *Writer) WriteTo(t *models.NoteTimeline, out io.Writer) error {
	s, err := w.Encode(t)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write midi: %w", err)
	}
	return nil
}

// WriteFile encodes a timeline to a file
func (w *Writer) WriteFile(t *models.NoteTimeline, path string) error {
	s, err := w.Encode(t)
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("failed to write midi file %s: %w", path, err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
