package models

import (
	"time"
)

// HistoryRecord is one completed arrangement run as kept in the history log
type HistoryRecord struct {
	ID                   uint      `gorm:"primarykey" json:"-" csv:"-"`
	CreatedAt            time.Time `json:"-" csv:"-"`
	Timestamp            string    `gorm:"uniqueIndex;not null" json:"timestamp" csv:"timestamp"`
	Model                string    `json:"model" csv:"model"`
	Length               int       `json:"length" csv:"length"`
	Tempo                int       `json:"tempo" csv:"tempo"`
	Temperature          float64   `json:"temperature" csv:"temperature"`
	Genre                string    `json:"genre" csv:"genre"`
	MelodyInstrument     int       `json:"melody_instrument" csv:"melody_instrument"`
	BassInstrument       int       `json:"bass_instrument" csv:"bass_instrument"`
	ChordInstrument      int       `json:"chord_instrument" csv:"chord_instrument"`
	PadInstrument        *int      `json:"pad_instrument" csv:"pad_instrument"`
	AddDrums             bool      `json:"add_drums" csv:"add_drums"`
	ChordProgressionType string    `json:"chord_progression_type" csv:"chord_progression_type"`
	ChordStyle           string    `json:"chord_style" csv:"chord_style"`
	MajorKey             bool      `json:"major_key" csv:"major_key"`
	AddArpeggio          bool      `json:"add_arpeggio" csv:"add_arpeggio"`
	Prompt               string    `gorm:"type:text" json:"prompt" csv:"prompt"`
	Title                string    `json:"title,omitempty" csv:"title"`
	MIDIFile             string    `json:"midi_file" csv:"midi_file"`
	WAVFile              string    `json:"wav_file" csv:"wav_file"`
}

// TableName pins the table name
func (HistoryRecord) TableName() string {
	return "history_records"
}

// NewHistoryRecord builds a record from a resolved request and its output files
func NewHistoryRecord(timestamp string, r ResolvedRequest, midiFile, wavFile string) HistoryRecord {
	genre := r.Genre
	if genre == "" {
		genre = "-"
	}
	var pad *int
	if r.PadInstrument != nil {
		p := *r.PadInstrument
		pad = &p
	}
	return HistoryRecord{
		Timestamp:            timestamp,
		Model:                r.Model,
		Length:               r.Length,
		Tempo:                r.Tempo,
		Temperature:          r.Temperature,
		Genre:                genre,
		MelodyInstrument:     r.MelodyInstrument,
		BassInstrument:       r.BassInstrument,
		ChordInstrument:      r.ChordInstrument,
		PadInstrument:        pad,
		AddDrums:             r.AddDrums,
		ChordProgressionType: string(r.ChordProgressionType),
		ChordStyle:           string(r.ChordStyle),
		MajorKey:             r.MajorKey,
		AddArpeggio:          r.AddArpeggio,
		Prompt:               r.Prompt,
		Title:                r.Title,
		MIDIFile:             midiFile,
		WAVFile:              wavFile,
	}
}

// HistoryView is a record with display names for its instruments
type HistoryView struct {
	HistoryRecord
	InstrumentName      string `json:"instrument_name"`
	BassInstrumentName  string `json:"bass_instrument_name"`
	ChordInstrumentName string `json:"chord_instrument_name"`
	PadInstrumentName   string `json:"pad_instrument_name"`
}
