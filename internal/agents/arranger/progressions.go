package arranger

import (
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Chord loops in fixed register. Each is repeated by the layering engine to
// cover the requested length.
var (
	seventhProgression = models.ChordProgression{
		{60, 64, 67, 70}, {55, 59, 62, 65}, {57, 60, 64, 67}, {53, 57, 60, 64},
	}
	susProgression = models.ChordProgression{
		{60, 65, 67}, {57, 62, 64}, {55, 60, 62}, {53, 58, 60},
	}
	transitionProgression = models.ChordProgression{
		{60, 64, 67}, {62, 65, 69}, {59, 63, 66}, {60, 64, 67},
	}
	diminishedProgression = models.ChordProgression{
		{60, 63, 66}, {62, 65, 68}, {59, 62, 65}, {57, 60, 63},
	}
	augmentedProgression = models.ChordProgression{
		{60, 64, 68}, {62, 66, 70}, {59, 63, 67}, {55, 59, 63},
	}
	rockProgression = models.ChordProgression{
		{60, 64, 67}, {55, 59, 62}, {57, 60, 64}, {62, 66, 69},
	}
	jazzProgression = models.ChordProgression{
		{60, 63, 67, 70}, {58, 62, 65, 69}, {55, 59, 62, 65}, {60, 63, 67, 70},
	}
	majorProgression = models.ChordProgression{
		{60, 64, 67}, {62, 67, 71}, {57, 60, 64}, {55, 59, 62},
	}
	minorProgression = models.ChordProgression{
		{60, 63, 67}, {62, 65, 69}, {57, 60, 64}, {55, 58, 62},
	}
)

// SelectProgression picks the chord loop for a request. A non-standard chord
// style wins, then the genre progression type, then the key.
func SelectProgression(style models.ChordStyle, progressionType models.ProgressionType, majorKey bool) models.ChordProgression {
	var p models.ChordProgression
	switch style {
	case models.ChordStyleSeventh:
		p = seventhProgression
	case models.ChordStyleSus:
		p = susProgression
	case models.ChordStyleTransition:
		p = transitionProgression
	case models.ChordStyleDiminished:
		p = diminishedProgression
	case models.ChordStyleAugmented:
		p = augmentedProgression
	default:
		switch progressionType {
		case models.ProgressionRock:
			p = rockProgression
		case models.ProgressionJazz:
			p = jazzProgression
		case models.ProgressionPop:
			p = majorProgression
		default:
			if majorKey {
				p = majorProgression
			} else {
				p = minorProgression
			}
		}
	}
	return cloneProgression(p)
}

// ProgressionFor returns the custom progression of a request when it parses,
// falling back to the library selection
func ProgressionFor(req models.ResolvedRequest) models.ChordProgression {
	if len(req.CustomProgression) > 0 {
		if p, err := ProgressionFromSymbols(req.CustomProgression); err == nil {
			return p
		}
	}
	return SelectProgression(req.ChordStyle, req.ChordProgressionType, req.MajorKey)
}

func cloneProgression(p models.ChordProgression) models.ChordProgression {
	out := make(models.ChordProgression, len(p))
	for i, chord := range p {
		out[i] = append(models.Chord(nil), chord...)
	}
	return out
}
