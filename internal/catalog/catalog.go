package catalog

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/pkg/embedded"
)

// Catalog bundles the static tables used by the resolver and the pipeline
type Catalog struct {
	Profiles []Profile
	Lexicon  *Lexicon
	Models   []ModelEntry
	Presets  map[string]Preset
}

// Default returns the built-in tables plus the embedded presets
func Default() (*Catalog, error) {
	presets, err := ParsePresets(embedded.PresetsYAML)
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		Profiles: DefaultProfiles(),
		Lexicon:  NewLexicon(DefaultInstruments()),
		Models:   DefaultModels(),
		Presets:  make(map[string]Preset, len(presets)),
	}
	c.AddPresets(presets)
	return c, nil
}

// AddPresets adds or replaces presets by name
func (c *Catalog) AddPresets(presets []Preset) {
	if c.Presets == nil {
		c.Presets = make(map[string]Preset, len(presets))
	}
	for _, p := range presets {
		c.Presets[strings.ToLower(p.Name)] = p
	}
}

// MergePresetsFile loads presets from path on top of the current set
func (c *Catalog) MergePresetsFile(path string) error {
	presets, err := LoadPresetsFile(path)
	if err != nil {
		return err
	}
	c.AddPresets(presets)
	logger.Info("Loaded presets file", logger.Fields{
		"path":  path,
		"count": len(presets),
	})
	return nil
}

// Preset looks up a preset by name, case-insensitively
func (c *Catalog) Preset(name string) (Preset, bool) {
	p, ok := c.Presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Profile looks up a profile by keyword
func (c *Catalog) Profile(keyword string) (Profile, bool) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	for _, p := range c.Profiles {
		if p.Keyword == keyword {
			return p, true
		}
	}
	return Profile{}, false
}

// Model looks up a registry entry by name
func (c *Catalog) Model(name string) (ModelEntry, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelEntry{}, false
}

// RegisterModel adds a registry entry, replacing one with the same name
func (c *Catalog) RegisterModel(entry ModelEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("model entry has no name")
	}
	for i, m := range c.Models {
		if m.Name == entry.Name {
			c.Models[i] = entry
			return nil
		}
	}
	c.Models = append(c.Models, entry)
	return nil
}

// ModelFromText returns the model selected by a keyword in lowered prompt text
func ModelFromText(lower string) (string, bool) {
	for _, k := range modelKeywords {
		if strings.Contains(lower, k.phrase) {
			return k.model, true
		}
	}
	return "", false
}
