package arranger

import (
	"math"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// DefaultSectionSeconds is the fixed section size
const DefaultSectionSeconds = 8.0

var sectionCycle = []models.SectionType{
	models.SectionVerse,
	models.SectionChorus,
	models.SectionBridge,
	models.SectionOutro,
}

// SectionPlan is the section layout of an arrangement with its tempo curve
type SectionPlan struct {
	Sections []models.Section
	Tempos   []models.TempoChange
}

// PlanSections divides length seconds into sections of sectionSeconds and
// derives one tempo change per section. Types cycle verse, chorus, bridge,
// outro unless dictated is given, in which case the dictated names are
// cycled instead. With intro set an intro section is prepended.
func PlanSections(length int, baseTempo int, sectionSeconds float64, intro bool, dictated []models.SectionType) SectionPlan {
	if sectionSeconds <= 0 {
		sectionSeconds = DefaultSectionSeconds
	}
	count := int(math.Ceil(float64(length)/sectionSeconds)) + 1

	types := make([]models.SectionType, 0, count+1)
	if intro && (len(dictated) == 0 || dictated[0] != models.SectionIntro) {
		types = append(types, models.SectionIntro)
	}
	cycle := sectionCycle
	if len(dictated) > 0 {
		cycle = dictated
	}
	for i := 0; i < count; i++ {
		types = append(types, cycle[i%len(cycle)])
	}

	plan := SectionPlan{
		Sections: make([]models.Section, len(types)),
		Tempos:   make([]models.TempoChange, len(types)),
	}
	for i, st := range types {
		start := float64(i) * sectionSeconds
		tempo := int(math.Round(float64(baseTempo) * st.Multiplier()))
		plan.Sections[i] = models.Section{
			Type:      st,
			StartTime: start,
			Duration:  sectionSeconds,
			Tempo:     tempo,
		}
		plan.Tempos[i] = models.TempoChange{QPM: float64(tempo), Time: start}
	}
	return plan
}

// PlanFor plans the sections of a resolved request
func PlanFor(req models.ResolvedRequest) SectionPlan {
	return PlanSections(req.Length, req.Tempo, DefaultSectionSeconds, req.SongStructure, req.Sections)
}
