package midifile

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// ReadFile decodes a MIDI file into a timeline
func ReadFile(path string) (*models.NoteTimeline, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi file %s: %w", path, err)
	}
	return Decode(s)
}

// Read decodes MIDI data from r
func Read(r io.Reader) (*models.NoteTimeline, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi: %w", err)
	}
	return Decode(s)
}

type openNote struct {
	tick     uint32
	velocity uint8
	program  int
}

type noteKey struct {
	channel uint8
	key     uint8
}

// Decode converts an SMF into a timeline. Notes are ordered by start time;
// unterminated notes are dropped.
func Decode(s *smf.SMF) (*models.NoteTimeline, error) {
	tf, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	resolution := uint16(tf)

	var tempos []tickTempo
	for _, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				tempos = append(tempos, tickTempo{tick: tick, qpm: bpm})
			}
		}
	}
	tm := newTempoMapFromTicks(resolution, tempos, fallbackQPM)

	timeline := &models.NoteTimeline{Tempos: tm.changes()}
	var notes []models.NoteEvent
	for _, track := range s.Tracks {
		programs := make(map[uint8]int)
		open := make(map[noteKey][]openNote)
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			var ch, key, vel, prog uint8
			switch {
			case ev.Message.GetProgramChange(&ch, &prog):
				programs[ch] = int(prog)
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				k := noteKey{ch, key}
				open[k] = append(open[k], openNote{tick: tick, velocity: vel, program: programs[ch]})
			case ev.Message.GetNoteEnd(&ch, &key):
				k := noteKey{ch, key}
				pending := open[k]
				if len(pending) == 0 {
					continue
				}
				on := pending[0]
				open[k] = pending[1:]
				n := models.NoteEvent{
					Pitch:     int(key),
					StartTime: tm.secondsAt(on.tick),
					EndTime:   tm.secondsAt(tick),
					Velocity:  int(on.velocity),
					Channel:   int(ch),
					Program:   on.program,
				}
				if ch == models.ChannelDrums {
					n.IsDrum = true
					n.Program = models.ProgramDrums
				}
				notes = append(notes, n)
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].StartTime < notes[j].StartTime })
	timeline.Add(notes...)
	return timeline, nil
}
