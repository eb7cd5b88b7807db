package models

// ProgressionType names a genre chord loop
type ProgressionType string

const (
	ProgressionStandard ProgressionType = "standard"
	ProgressionRock     ProgressionType = "rock"
	ProgressionJazz     ProgressionType = "jazz"
	ProgressionPop      ProgressionType = "pop"
	// classical and electronic have no loop of their own and use the key loop
	ProgressionClassical  ProgressionType = "classical"
	ProgressionElectronic ProgressionType = "electronic"
)

// ChordStyle is a chord colour that overrides the progression type when not standard
type ChordStyle string

const (
	ChordStyleStandard   ChordStyle = "standard"
	ChordStyleSeventh    ChordStyle = "seventh"
	ChordStyleSus        ChordStyle = "sus"
	ChordStyleDiminished ChordStyle = "diminished"
	ChordStyleAugmented  ChordStyle = "augmented"
	ChordStyleTransition ChordStyle = "transition"
)

// ArpeggioPattern orders the pitches of one chord in the arpeggio layer
type ArpeggioPattern string

const (
	ArpeggioUp     ArpeggioPattern = "up"
	ArpeggioDown   ArpeggioPattern = "down"
	ArpeggioUpDown ArpeggioPattern = "up_down"
	ArpeggioRandom ArpeggioPattern = "random"
)

// Model identifiers known out of the box
const (
	ModelBasicRNN     = "basic_rnn"
	ModelAttentionRNN = "attention_rnn"
	ModelOpenAIMelody = "openai_melody"
	ModelGeminiMelody = "gemini_melody"
)

// Temperature bounds
const (
	MinTemperature = 0.1
	MaxTemperature = 2.0
)

// ClampTemperature bounds t to [MinTemperature, MaxTemperature]
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// ResolvedRequest is the canonical parameter set of one arrangement run.
// It is built once by the resolver and not modified afterwards.
type ResolvedRequest struct {
	Prompt               string          `json:"prompt"`
	Length               int             `json:"length"`
	Tempo                int             `json:"tempo"`
	Temperature          float64         `json:"temperature"`
	Model                string          `json:"model"`
	Genre                string          `json:"genre,omitempty"`
	Preset               string          `json:"preset,omitempty"`
	Title                string          `json:"title,omitempty"`
	MelodyInstrument     int             `json:"melody_instrument"`
	BassInstrument       int             `json:"bass_instrument"`
	ChordInstrument      int             `json:"chord_instrument"`
	PadInstrument        *int            `json:"pad_instrument"`
	AddDrums             bool            `json:"add_drums"`
	ChordProgressionType ProgressionType `json:"chord_progression_type"`
	ChordStyle           ChordStyle      `json:"chord_style"`
	MajorKey             bool            `json:"major_key"`
	AddArpeggio          bool            `json:"add_arpeggio"`
	ArpeggioPattern      ArpeggioPattern `json:"arpeggio_pattern"`
	SongStructure        bool            `json:"song_structure"`
	Sections             []SectionType   `json:"sections,omitempty"`
	CustomProgression    []string        `json:"custom_progression,omitempty"`
}

// HasPad reports whether a pad layer was resolved
func (r ResolvedRequest) HasPad() bool {
	return r.PadInstrument != nil
}

// Overrides are caller-supplied structured fields. Nil means "not given".
type Overrides struct {
	Length           *int     `json:"length,omitempty"`
	Tempo            *int     `json:"tempo,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	Model            *string  `json:"model,omitempty"`
	Genre            *string  `json:"genre,omitempty"`
	Preset           string   `json:"preset,omitempty"`
	Title            string   `json:"title,omitempty"`
	MelodyInstrument *int     `json:"melody_instrument,omitempty"`
	BassInstrument   *int     `json:"bass_instrument,omitempty"`
	ChordInstrument  *int     `json:"chord_instrument,omitempty"`
	PadInstrument    *int     `json:"pad_instrument,omitempty"`
	AddDrums         *bool    `json:"add_drums,omitempty"`
	AddArpeggio      *bool    `json:"add_arpeggio,omitempty"`
	SongStructure    *bool    `json:"song_structure,omitempty"`
}

// Defaults are the lowest-precedence values used when nothing else applies
type Defaults struct {
	Length           int
	Tempo            int
	Temperature      float64
	Model            string
	MelodyInstrument int
	BassInstrument   int
	ChordInstrument  int
	AddDrums         bool
	MajorKey         bool

	// Upper bounds applied after every other source
	MaxLength int
	MaxTempo  int
}

// Resolution limits used when Defaults leave them unset
const (
	DefaultMaxLength = 600
	DefaultMaxTempo  = 300
)

// DefaultDefaults returns the built-in fallback values
func DefaultDefaults() Defaults {
	return Defaults{
		Length:           30,
		Tempo:            120,
		Temperature:      1.0,
		Model:            ModelBasicRNN,
		MelodyInstrument: ProgramPiano,
		BassInstrument:   33,
		ChordInstrument:  29,
		AddDrums:         true,
		MajorKey:         true,
		MaxLength:        DefaultMaxLength,
		MaxTempo:         DefaultMaxTempo,
	}
}

// ArrangementRequest is the input contract of the pipeline: prompt text plus overrides
type ArrangementRequest struct {
	Prompt string `json:"prompt"`
	Overrides
}

// Arrangement is the result of a pipeline run
type Arrangement struct {
	Request     ResolvedRequest  `json:"request"`
	Sections    []Section        `json:"sections"`
	Progression ChordProgression `json:"progression"`
	Timeline    *NoteTimeline    `json:"-"`
	Timestamp   string           `json:"timestamp"`
	BaseName    string           `json:"base_name"`
	MIDIFile    string           `json:"midi_file"`
	WAVFile     string           `json:"wav_file,omitempty"`
	NoteCount   int              `json:"note_count"`
}
