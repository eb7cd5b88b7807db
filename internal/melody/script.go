package melody

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/exec"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
	"github.com/Conceptual-Machines/magda-compose/internal/midifile"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// ScriptRunner runs a Python script
type ScriptRunner interface {
	RunScript(ctx context.Context, stage, script string, args ...string) (*exec.Result, error)
}

// ScriptBackend runs a generator script against a model bundle. The script
// reads the primer MIDI file and writes the generated melody as MIDI.
type ScriptBackend struct {
	runner    ScriptRunner
	script    string
	bundleDir string
	workDir   string
}

// NewScriptBackend creates a script backend. Temporary files go under workDir
// (the system temp dir when empty).
func NewScriptBackend(runner ScriptRunner, script, bundleDir, workDir string) *ScriptBackend {
	return &ScriptBackend{
		runner:    runner,
		script:    script,
		bundleDir: bundleDir,
		workDir:   workDir,
	}
}

// Generate implements Backend
func (b *ScriptBackend) Generate(
	ctx context.Context,
	entry catalog.ModelEntry,
	seed *models.NoteTimeline,
	durationSeconds, temperature float64,
) (*models.NoteTimeline, error) {
	dir, err := os.MkdirTemp(b.workDir, "melody-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create melody work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	primerPath := filepath.Join(dir, "primer.mid")
	outputPath := filepath.Join(dir, "melody.mid")

	if err := midifile.NewWriter().WriteFile(seed, primerPath); err != nil {
		return nil, fmt.Errorf("failed to write primer: %w", err)
	}

	args := []string{
		"--bundle_file", filepath.Join(b.bundleDir, entry.Bundle),
		"--config", entry.Name,
		"--primer_midi", primerPath,
		"--output_file", outputPath,
		"--duration", strconv.FormatFloat(durationSeconds, 'f', 2, 64),
		"--temperature", strconv.FormatFloat(temperature, 'f', 2, 64),
		"--qpm", strconv.FormatFloat(seedQPM(seed), 'f', 0, 64),
	}

	result, err := b.runner.RunScript(ctx, "melody", b.script, args...)
	if err != nil {
		if errors.Is(err, apperrors.ErrToolNotInstalled) {
			return nil, apperrors.ModelUnavailable(entry.Name, err)
		}
		return nil, fmt.Errorf("melody generation failed: %w", err)
	}

	melody, err := midifile.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated melody: %w", err)
	}

	logger.Debug("Generated melody", logger.Fields{
		"model":       entry.Name,
		"notes":       len(melody.Notes),
		"duration_ms": result.Duration.Milliseconds(),
	})
	return melody, nil
}

func seedQPM(seed *models.NoteTimeline) float64 {
	if seed != nil && len(seed.Tempos) > 0 && seed.Tempos[0].QPM > 0 {
		return seed.Tempos[0].QPM
	}
	return float64(models.DefaultDefaults().Tempo)
}
