package midifile

import (
	"sort"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// tempoMap converts between seconds and ticks over a piecewise constant tempo curve
type tempoMap struct {
	resolution float64 // ticks per quarter note
	segments   []tempoSegment
}

type tempoSegment struct {
	seconds float64
	ticks   float64
	qpm     float64
}

func newTempoMap(resolution uint16, tempos []models.TempoChange, fallbackQPM float64) *tempoMap {
	changes := append([]models.TempoChange(nil), tempos...)
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Time < changes[j].Time })
	if len(changes) == 0 || changes[0].Time > 0 {
		changes = append([]models.TempoChange{{QPM: fallbackQPM, Time: 0}}, changes...)
	}

	m := &tempoMap{resolution: float64(resolution)}
	for _, c := range changes {
		if c.QPM <= 0 {
			continue
		}
		var ticks float64
		if n := len(m.segments); n > 0 {
			prev := m.segments[n-1]
			ticks = prev.ticks + (c.Time-prev.seconds)*prev.qpm/60*m.resolution
		}
		m.segments = append(m.segments, tempoSegment{seconds: c.Time, ticks: ticks, qpm: c.QPM})
	}
	if len(m.segments) == 0 {
		m.segments = []tempoSegment{{qpm: fallbackQPM}}
	}
	return m
}

// tickTempo is a tempo event read from a file
type tickTempo struct {
	tick uint32
	qpm  float64
}

// newTempoMapFromTicks builds the map from tempo events positioned in ticks
func newTempoMapFromTicks(resolution uint16, events []tickTempo, fallbackQPM float64) *tempoMap {
	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })
	m := &tempoMap{resolution: float64(resolution)}
	m.segments = []tempoSegment{{qpm: fallbackQPM}}
	for _, e := range events {
		if e.qpm <= 0 {
			continue
		}
		prev := m.segments[len(m.segments)-1]
		seconds := prev.seconds + (float64(e.tick)-prev.ticks)/m.resolution*60/prev.qpm
		if float64(e.tick) == prev.ticks {
			m.segments[len(m.segments)-1].qpm = e.qpm
			continue
		}
		m.segments = append(m.segments, tempoSegment{seconds: seconds, ticks: float64(e.tick), qpm: e.qpm})
	}
	return m
}

// changes returns the tempo curve in seconds
func (m *tempoMap) changes() []models.TempoChange {
	out := make([]models.TempoChange, len(m.segments))
	for i, s := range m.segments {
		out[i] = models.TempoChange{QPM: s.qpm, Time: s.seconds}
	}
	return out
}

// ticksAt returns the absolute tick for a time in seconds
func (m *tempoMap) ticksAt(seconds float64) uint32 {
	seg := m.segments[0]
	for _, s := range m.segments[1:] {
		if s.seconds > seconds {
			break
		}
		seg = s
	}
	t := seg.ticks + (seconds-seg.seconds)*seg.qpm/60*m.resolution
	if t < 0 {
		return 0
	}
	return uint32(t + 0.5)
}

// secondsAt returns the time in seconds of an absolute tick
func (m *tempoMap) secondsAt(tick uint32) float64 {
	seg := m.segments[0]
	for _, s := range m.segments[1:] {
		if s.ticks > float64(tick) {
			break
		}
		seg = s
	}
	return seg.seconds + (float64(tick)-seg.ticks)/m.resolution*60/seg.qpm
}
