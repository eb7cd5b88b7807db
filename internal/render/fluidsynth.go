package render

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/exec"
	"github.com/Conceptual-Machines/magda-compose/internal/logger"
)

// DefaultSampleRate is the output sample rate in Hz
const DefaultSampleRate = 44100

// Renderer converts a MIDI file into an audio file
type Renderer interface {
	Render(ctx context.Context, midiPath, audioPath string) error
}

// CommandRunner runs an external tool
type CommandRunner interface {
	Run(ctx context.Context, stage, name string, args ...string) (*exec.Result, error)
}

// FluidSynth renders through the fluidsynth command line tool
type FluidSynth struct {
	runner     CommandRunner
	binary     string
	soundFont  string
	sampleRate int
}

// NewFluidSynth creates a renderer using the given instrument bank
func NewFluidSynth(runner CommandRunner, binary, soundFont string, sampleRate int) *FluidSynth {
	if binary == "" {
		binary = "fluidsynth"
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &FluidSynth{
		runner:     runner,
		binary:     binary,
		soundFont:  soundFont,
		sampleRate: sampleRate,
	}
}

// Render runs fluidsynth -ni <sf2> <mid> -F <wav> -r <rate>. Every failure,
// including an empty or missing output file, is a RenderFailure.
func (f *FluidSynth) Render(ctx context.Context, midiPath, audioPath string) error {
	if _, err := os.Stat(f.soundFont); err != nil {
		return apperrors.RenderFailure(fmt.Errorf("soundfont not found at %s: %w", f.soundFont, err))
	}
	if _, err := os.Stat(midiPath); err != nil {
		return apperrors.RenderFailure(fmt.Errorf("midi file not found at %s: %w", midiPath, err))
	}

	start := time.Now()
	result, err := f.runner.Run(ctx, "render", f.binary,
		"-ni", f.soundFont, midiPath,
		"-F", audioPath,
		"-r", strconv.Itoa(f.sampleRate),
	)
	if err != nil {
		return apperrors.RenderFailure(err)
	}

	info, err := os.Stat(audioPath)
	if err != nil || info.Size() == 0 {
		return apperrors.RenderFailure(fmt.Errorf("audio output missing or empty at %s: %s", audioPath, result.Stderr))
	}

	logger.Debug("Rendered audio", logger.Fields{
		"midi":        midiPath,
		"audio":       audioPath,
		"bytes":       info.Size(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
