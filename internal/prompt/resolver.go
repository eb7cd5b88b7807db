package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Resolver turns prompt text plus caller input into a ResolvedRequest.
//
// Precedence, highest first: caller overrides, preset bundle, prompt text,
// defaults. Every keyword scan walks the catalog tables in order and stops
// at the first match. Resolve never fails.
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver over the given catalog
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve builds the request for one arrangement run
func (r *Resolver) Resolve(text string, overrides models.Overrides, defaults models.Defaults) models.ResolvedRequest {
	req := r.FromText(text, defaults)

	if overrides.Preset != "" {
		if preset, ok := r.catalog.Preset(overrides.Preset); ok {
			r.applyPreset(&req, preset)
		} else {
			logger.Warn("Unknown preset ignored", logger.Fields{"preset": overrides.Preset})
		}
	}

	r.applyOverrides(&req, overrides)

	req.Temperature = models.ClampTemperature(req.Temperature)
	if req.Length <= 0 {
		req.Length = positiveOr(defaults.Length, models.DefaultDefaults().Length)
	}
	if req.Tempo <= 0 {
		req.Tempo = positiveOr(defaults.Tempo, models.DefaultDefaults().Tempo)
	}
	if req.Model == "" {
		req.Model = models.ModelBasicRNN
	}
	req.Length = capAt(req.Length, positiveOr(defaults.MaxLength, models.DefaultMaxLength), "length")
	req.Tempo = capAt(req.Tempo, positiveOr(defaults.MaxTempo, models.DefaultMaxTempo), "tempo")

	logger.Debug("Resolved request", logger.Fields{
		"length":      req.Length,
		"tempo":       req.Tempo,
		"temperature": req.Temperature,
		"model":       req.Model,
		"genre":       req.Genre,
	})
	return req
}

// FromText derives a request from prompt text over the given defaults
func (r *Resolver) FromText(text string, defaults models.Defaults) models.ResolvedRequest {
	lower := strings.ToLower(text)
	req := models.ResolvedRequest{
		Prompt:               text,
		Length:               defaults.Length,
		Tempo:                defaults.Tempo,
		Temperature:          defaults.Temperature,
		Model:                defaults.Model,
		MelodyInstrument:     defaults.MelodyInstrument,
		BassInstrument:       defaults.BassInstrument,
		ChordInstrument:      defaults.ChordInstrument,
		AddDrums:             defaults.AddDrums,
		MajorKey:             defaults.MajorKey,
		ChordProgressionType: models.ProgressionStandard,
		ChordStyle:           models.ChordStyleStandard,
		ArpeggioPattern:      models.ArpeggioUp,
	}

	if model, ok := catalog.ModelFromText(lower); ok {
		req.Model = model
	}

	r.resolveTempo(&req, lower)
	if n, ok := firstInt(lengthPattern, lower); ok && n > 0 {
		req.Length = n
	}
	r.resolveTemperature(&req, lower)
	r.resolveMelody(&req, lower)
	r.resolveBass(&req, lower)
	r.resolveChords(&req, lower)
	r.resolvePad(&req, lower)
	r.resolveArpeggio(&req, lower)
	r.resolveDrums(&req, lower)

	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.MajorKey != nil }); ok {
		req.MajorKey = *p.MajorKey
	}
	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.Progression != "" }); ok {
		req.ChordProgressionType = p.Progression
	}
	req.ChordStyle = chordStyleFromText(lower)
	req.Sections = sectionsFromText(lower)
	req.SongStructure = strings.Contains(lower, "song structure")

	req.Temperature = models.ClampTemperature(req.Temperature)
	return req
}

func (r *Resolver) resolveTempo(req *models.ResolvedRequest, lower string) {
	genre, hasGenre := r.firstProfile(lower, catalog.Profile.IsGenre)
	if hasGenre {
		req.Genre = genre.Keyword
	}

	if n, ok := firstInt(tempoPattern, lower); ok && n > 0 {
		req.Tempo = n
		return
	}
	if hasGenre {
		req.Tempo = genre.Tempo.Midpoint()
	}
	for _, w := range tempoWords {
		if strings.Contains(lower, w.word) {
			req.Tempo = w.tempo
			return
		}
	}
}

func (r *Resolver) resolveTemperature(req *models.ResolvedRequest, lower string) {
	if m := temperaturePattern.FindStringSubmatch(lower); m != nil {
		if t, err := strconv.ParseFloat(m[1], 64); err == nil {
			req.Temperature = t
			return
		}
	}

	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.Temperature != nil }); ok {
		req.Temperature = p.Temperature.Midpoint()
	}
	switch {
	case containsAny(lower, "complex", "experimental"):
		req.Temperature = max(req.Temperature, complexTemperatureFloor)
	case containsAny(lower, "simple", "calm"):
		req.Temperature = min(req.Temperature, calmTemperatureCeiling)
	}
	if strings.Contains(lower, "rock") {
		req.Temperature = min(req.Temperature, rockTemperatureCeiling)
	}
}

func (r *Resolver) resolveMelody(req *models.ResolvedRequest, lower string) {
	if n, ok := firstInt(instrumentPattern, lower); ok && n >= 0 && n <= models.ProgramDrums {
		req.MelodyInstrument = n
		return
	}

	leadHint := containsAny(lower, "melody", "lead")
	layerHint := containsAny(lower, "chords", "bass", "pad")
	for _, inst := range r.catalog.Lexicon.Entries() {
		if !strings.Contains(lower, inst.Name) {
			continue
		}
		if leadHint || (strings.HasPrefix(lower, inst.Name) && !layerHint) {
			req.MelodyInstrument = inst.Program
			return
		}
	}

	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.MelodyInstrument != nil }); ok {
		req.MelodyInstrument = *p.MelodyInstrument
	}
}

func (r *Resolver) resolveBass(req *models.ResolvedRequest, lower string) {
	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.BassInstrument != nil }); ok {
		req.BassInstrument = *p.BassInstrument
	}
	if !strings.Contains(lower, "bass") {
		return
	}
	for _, inst := range r.catalog.Lexicon.Entries() {
		if strings.Contains(lower, inst.Name+" bass") || strings.Contains(lower, "bass "+inst.Name) {
			req.BassInstrument = inst.Program
			return
		}
	}
	for _, s := range bassSynonyms {
		if strings.Contains(lower, s.phrase) {
			req.BassInstrument = s.program
			return
		}
	}
}

func (r *Resolver) resolveChords(req *models.ResolvedRequest, lower string) {
	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.ChordInstrument != nil }); ok {
		req.ChordInstrument = *p.ChordInstrument
	}
	if !strings.Contains(lower, "chords") {
		return
	}
	for _, inst := range r.catalog.Lexicon.Entries() {
		if strings.Contains(lower, inst.Name+" chords") {
			req.ChordInstrument = inst.Program
			return
		}
	}
	for _, s := range chordSynonyms {
		if strings.Contains(lower, s.phrase) {
			req.ChordInstrument = s.program
			return
		}
	}
}

func (r *Resolver) resolvePad(req *models.ResolvedRequest, lower string) {
	req.PadInstrument = nil
	if containsAny(lower, "no pad", "without pad") {
		return
	}
	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.PadInstrument != nil }); ok {
		req.PadInstrument = intPtr(*p.PadInstrument)
		return
	}
	for _, inst := range r.catalog.Lexicon.Entries() {
		if strings.Contains(lower, inst.Name+" pad") || strings.Contains(lower, "pad "+inst.Name) {
			req.PadInstrument = intPtr(inst.Program)
			return
		}
	}
	for _, s := range padSynonyms {
		if strings.Contains(lower, s.word) {
			req.PadInstrument = intPtr(s.program)
			return
		}
	}
	if strings.Contains(lower, "pad") {
		req.PadInstrument = intPtr(defaultPadProgram)
	}
}

func (r *Resolver) resolveArpeggio(req *models.ResolvedRequest, lower string) {
	if _, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.AddArpeggio }); ok {
		req.AddArpeggio = true
	}
	if strings.Contains(lower, "arpeggio") {
		req.AddArpeggio = true
	}
	req.ArpeggioPattern = arpeggioPatternFromText(lower)
}

func (r *Resolver) resolveDrums(req *models.ResolvedRequest, lower string) {
	switch {
	case containsAny(lower, "no drums", "without drums"):
		req.AddDrums = false
	case strings.Contains(lower, "drums"):
		req.AddDrums = true
	}
	if p, ok := r.firstProfile(lower, func(p catalog.Profile) bool { return p.DrumPreset != "" }); ok && p.DrumPreset == catalog.DrumsNone {
		req.AddDrums = false
	}
}

// firstProfile returns the first profile in table order whose keyword occurs
// in the text and which carries the field tested by has
func (r *Resolver) firstProfile(lower string, has func(catalog.Profile) bool) (catalog.Profile, bool) {
	for _, p := range r.catalog.Profiles {
		if strings.Contains(lower, p.Keyword) && has(p) {
			return p, true
		}
	}
	return catalog.Profile{}, false
}

func (r *Resolver) applyGenre(req *models.ResolvedRequest, keyword string) {
	p, ok := r.catalog.Profile(keyword)
	if !ok {
		logger.Warn("Unknown genre ignored", logger.Fields{"genre": keyword})
		return
	}
	req.Genre = p.Keyword
	if p.Tempo != nil {
		req.Tempo = p.Tempo.Midpoint()
	}
	if p.MelodyInstrument != nil {
		req.MelodyInstrument = *p.MelodyInstrument
	}
	if p.BassInstrument != nil {
		req.BassInstrument = *p.BassInstrument
	}
	if p.ChordInstrument != nil {
		req.ChordInstrument = *p.ChordInstrument
	}
	if p.PadInstrument != nil {
		req.PadInstrument = intPtr(*p.PadInstrument)
	}
	if p.Progression != "" {
		req.ChordProgressionType = p.Progression
	}
	if p.DrumPreset != "" {
		req.AddDrums = p.DrumPreset != catalog.DrumsNone
	}
	if p.MajorKey != nil {
		req.MajorKey = *p.MajorKey
	}
}

func (r *Resolver) applyPreset(req *models.ResolvedRequest, p catalog.Preset) {
	req.Preset = p.Name
	if p.Genre != nil {
		r.applyGenre(req, *p.Genre)
	}
	if p.Length != nil && *p.Length > 0 {
		req.Length = *p.Length
	}
	if p.Tempo != nil && *p.Tempo > 0 {
		req.Tempo = *p.Tempo
	}
	if p.Temperature != nil {
		req.Temperature = *p.Temperature
	}
	if p.Model != nil && *p.Model != "" {
		req.Model = *p.Model
	}
	setProgram(&req.MelodyInstrument, p.MelodyInstrument)
	setProgram(&req.BassInstrument, p.BassInstrument)
	setProgram(&req.ChordInstrument, p.ChordInstrument)
	if p.PadInstrument != nil && validProgram(*p.PadInstrument) {
		req.PadInstrument = intPtr(*p.PadInstrument)
	}
	if p.NoPad {
		req.PadInstrument = nil
	}
	if p.AddDrums != nil {
		req.AddDrums = *p.AddDrums
	}
	if p.AddArpeggio != nil {
		req.AddArpeggio = *p.AddArpeggio
	}
	if pattern, ok := ParseArpeggioPattern(p.ArpeggioPattern); ok {
		req.ArpeggioPattern = pattern
	}
	if style, ok := ParseChordStyle(p.ChordStyle); ok {
		req.ChordStyle = style
	}
	if p.ProgressionType != "" {
		req.ChordProgressionType = models.ProgressionType(strings.ToLower(p.ProgressionType))
	}
	if p.MajorKey != nil {
		req.MajorKey = *p.MajorKey
	}
	if p.SongStructure != nil {
		req.SongStructure = *p.SongStructure
	}
	if len(p.Progression) > 0 {
		req.CustomProgression = append([]string(nil), p.Progression...)
	}
}

func (r *Resolver) applyOverrides(req *models.ResolvedRequest, o models.Overrides) {
	if o.Genre != nil && *o.Genre != "" {
		r.applyGenre(req, *o.Genre)
	}
	if o.Length != nil && *o.Length > 0 {
		req.Length = *o.Length
	}
	if o.Tempo != nil && *o.Tempo > 0 {
		req.Tempo = *o.Tempo
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.Model != nil && *o.Model != "" {
		req.Model = *o.Model
	}
	if o.Title != "" {
		req.Title = o.Title
	}
	setProgram(&req.MelodyInstrument, o.MelodyInstrument)
	setProgram(&req.BassInstrument, o.BassInstrument)
	setProgram(&req.ChordInstrument, o.ChordInstrument)
	if o.PadInstrument != nil {
		if *o.PadInstrument < 0 {
			req.PadInstrument = nil
		} else if validProgram(*o.PadInstrument) {
			req.PadInstrument = intPtr(*o.PadInstrument)
		}
	}
	if o.AddDrums != nil {
		req.AddDrums = *o.AddDrums
	}
	if o.AddArpeggio != nil {
		req.AddArpeggio = *o.AddArpeggio
	}
	if o.SongStructure != nil {
		req.SongStructure = *o.SongStructure
	}
}

// ParseChordStyle maps a style name to a ChordStyle
func ParseChordStyle(s string) (models.ChordStyle, bool) {
	switch style := models.ChordStyle(strings.ToLower(strings.TrimSpace(s))); style {
	case models.ChordStyleStandard, models.ChordStyleSeventh, models.ChordStyleSus,
		models.ChordStyleDiminished, models.ChordStyleAugmented, models.ChordStyleTransition:
		return style, true
	}
	return "", false
}

// ParseArpeggioPattern maps a pattern name to an ArpeggioPattern
func ParseArpeggioPattern(s string) (models.ArpeggioPattern, bool) {
	switch pattern := models.ArpeggioPattern(strings.ToLower(strings.TrimSpace(s))); pattern {
	case models.ArpeggioUp, models.ArpeggioDown, models.ArpeggioUpDown, models.ArpeggioRandom:
		return pattern, true
	}
	return "", false
}

func chordStyleFromText(lower string) models.ChordStyle {
	for _, f := range chordStyleFamilies {
		if containsAny(lower, f.synonyms...) {
			return f.style
		}
	}
	return models.ChordStyleStandard
}

func arpeggioPatternFromText(lower string) models.ArpeggioPattern {
	for _, p := range arpeggioPatterns {
		for _, w := range p.words {
			if strings.Contains(lower, w+" arpeggio") || strings.Contains(lower, "arpeggio "+w) {
				return p.pattern
			}
		}
	}
	return models.ArpeggioUp
}

func sectionsFromText(lower string) []models.SectionType {
	matches := sectionPattern.FindAllString(lower, -1)
	if len(matches) == 0 {
		return nil
	}
	sections := make([]models.SectionType, len(matches))
	for i, m := range matches {
		sections[i] = models.SectionType(m)
	}
	return sections
}

func firstInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func setProgram(dst *int, v *int) {
	if v != nil && validProgram(*v) {
		*dst = *v
	}
}

func validProgram(p int) bool {
	return p >= 0 && p <= models.ProgramDrums
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func capAt(v, limit int, field string) int {
	if v <= limit {
		return v
	}
	logger.Warn("Value clamped to limit", logger.Fields{"field": field, "value": v, "limit": limit})
	return limit
}

func intPtr(v int) *int {
	return &v
}
