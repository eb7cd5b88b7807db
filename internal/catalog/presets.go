package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset is a named bundle of optional parameters. It ranks below caller
// overrides and above values derived from prompt text.
type Preset struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description,omitempty"`
	Length           *int     `yaml:"length,omitempty"`
	Tempo            *int     `yaml:"tempo,omitempty"`
	Temperature      *float64 `yaml:"temperature,omitempty"`
	Model            *string  `yaml:"model,omitempty"`
	Genre            *string  `yaml:"genre,omitempty"`
	MelodyInstrument *int     `yaml:"melody_instrument,omitempty"`
	BassInstrument   *int     `yaml:"bass_instrument,omitempty"`
	ChordInstrument  *int     `yaml:"chord_instrument,omitempty"`
	PadInstrument    *int     `yaml:"pad_instrument,omitempty"`
	NoPad            bool     `yaml:"no_pad,omitempty"`
	AddDrums         *bool    `yaml:"add_drums,omitempty"`
	AddArpeggio      *bool    `yaml:"add_arpeggio,omitempty"`
	ArpeggioPattern  string   `yaml:"arpeggio_pattern,omitempty"`
	ChordStyle       string   `yaml:"chord_style,omitempty"`
	ProgressionType  string   `yaml:"progression_type,omitempty"`
	MajorKey         *bool    `yaml:"major_key,omitempty"`
	SongStructure    *bool    `yaml:"song_structure,omitempty"`
	Progression      []string `yaml:"progression,omitempty"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// ParsePresets decodes a presets YAML document
func ParsePresets(data []byte) ([]Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
	}
	return f.Presets, nil
}

// LoadPresetsFile reads presets from a YAML file
func LoadPresetsFile(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	return ParsePresets(data)
}

// PresetNames returns the preset names sorted
func PresetNames(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
