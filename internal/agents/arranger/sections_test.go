package arranger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func TestPlanSections_Cyclic(t *testing.T) {
	plan := PlanSections(30, 120, DefaultSectionSeconds, false, nil)

	// ceil(30/8) + 1
	require.Len(t, plan.Sections, 5)
	require.Len(t, plan.Tempos, 5)

	for i, s := range plan.Sections {
		assert.Equal(t, sectionCycle[i%4], s.Type)
		assert.Equal(t, float64(i)*8, s.StartTime)
		assert.Equal(t, 8.0, s.Duration)
		want := int(math.Round(120 * s.Type.Multiplier()))
		assert.Equal(t, want, s.Tempo)
		assert.Equal(t, float64(want), plan.Tempos[i].QPM)
		assert.Equal(t, s.StartTime, plan.Tempos[i].Time)
	}

	assert.Equal(t, []int{120, 132, 108, 96, 120}, []int{
		plan.Sections[0].Tempo, plan.Sections[1].Tempo, plan.Sections[2].Tempo,
		plan.Sections[3].Tempo, plan.Sections[4].Tempo,
	})
}

func TestPlanSections_Counts(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{1, 2},
		{8, 2},
		{9, 3},
		{16, 3},
		{60, 9},
	}
	for _, tt := range tests {
		plan := PlanSections(tt.length, 100, DefaultSectionSeconds, false, nil)
		assert.Len(t, plan.Sections, tt.want, "length %d", tt.length)
		last := plan.Sections[len(plan.Sections)-1]
		assert.GreaterOrEqual(t, last.StartTime+last.Duration, float64(tt.length))
	}
}

func TestPlanSections_Intro(t *testing.T) {
	plan := PlanSections(16, 100, DefaultSectionSeconds, true, nil)

	require.Len(t, plan.Sections, 4)
	assert.Equal(t, models.SectionIntro, plan.Sections[0].Type)
	assert.Equal(t, 100, plan.Sections[0].Tempo)
	assert.Equal(t, models.SectionVerse, plan.Sections[1].Type)
	assert.Equal(t, 8.0, plan.Sections[1].StartTime)
}

func TestPlanSections_Dictated(t *testing.T) {
	dictated := []models.SectionType{models.SectionChorus, models.SectionOutro}
	plan := PlanSections(24, 100, DefaultSectionSeconds, false, dictated)

	require.Len(t, plan.Sections, 4)
	assert.Equal(t, models.SectionChorus, plan.Sections[0].Type)
	assert.Equal(t, models.SectionOutro, plan.Sections[1].Type)
	assert.Equal(t, models.SectionChorus, plan.Sections[2].Type)
	assert.Equal(t, 110, plan.Sections[0].Tempo)
	assert.Equal(t, 80, plan.Sections[1].Tempo)
}

func TestPlanSections_DictatedIntroNotDoubled(t *testing.T) {
	dictated := []models.SectionType{models.SectionIntro, models.SectionVerse}
	plan := PlanSections(8, 100, DefaultSectionSeconds, true, dictated)

	require.Len(t, plan.Sections, 2)
	assert.Equal(t, models.SectionIntro, plan.Sections[0].Type)
	assert.Equal(t, models.SectionVerse, plan.Sections[1].Type)
}
