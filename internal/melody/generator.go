// Package melody is the boundary to the external melody generators. A
// Registry maps model names from the catalog onto backends: Python script
// bundles run through a subprocess, or an LLM asked for structured notes.
package melody

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Conceptual-Machines/magda-compose/internal/agents/arranger"
	"github.com/Conceptual-Machines/magda-compose/internal/catalog"
	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

// Seed fragment shape
const (
	DefaultSeedNote     = "C4"
	seedDurationSeconds = 0.5
	seedVelocity        = 80
)

// Generator produces a raw melody timeline continuing a seed fragment
type Generator interface {
	// Check fails with ErrModelUnavailable when model cannot be generated
	Check(model string) error
	Generate(ctx context.Context, seed *models.NoteTimeline, durationSeconds, temperature float64, model string) (*models.NoteTimeline, error)
}

// Backend generates melodies for one kind of registry entry
type Backend interface {
	Generate(ctx context.Context, entry catalog.ModelEntry, seed *models.NoteTimeline, durationSeconds, temperature float64) (*models.NoteTimeline, error)
}

// Registry resolves model names against the catalog and dispatches to backends
type Registry struct {
	catalog   *catalog.Catalog
	bundleDir string
	backends  map[catalog.ModelKind]Backend
}

// NewRegistry creates a registry over the catalog's model entries
func NewRegistry(cat *catalog.Catalog, bundleDir string) *Registry {
	return &Registry{
		catalog:   cat,
		bundleDir: bundleDir,
		backends:  make(map[catalog.ModelKind]Backend),
	}
}

// Register installs the backend serving entries of the given kind
func (r *Registry) Register(kind catalog.ModelKind, backend Backend) {
	r.backends[kind] = backend
}

// BundlePath returns where a script entry's bundle file is expected
func (r *Registry) BundlePath(entry catalog.ModelEntry) string {
	return filepath.Join(r.bundleDir, entry.Bundle)
}

// Lookup returns the entry for model, or ErrModelUnavailable when it is unknown,
// has no backend, or is a script model whose bundle file is missing.
func (r *Registry) Lookup(model string) (catalog.ModelEntry, error) {
	entry, ok := r.catalog.Model(model)
	if !ok {
		return catalog.ModelEntry{}, apperrors.ModelUnavailable(model, nil)
	}
	if _, ok := r.backends[entry.Kind]; !ok {
		return catalog.ModelEntry{}, apperrors.ModelUnavailable(model, fmt.Errorf("no %s backend configured", entry.Kind))
	}
	if entry.Kind == catalog.ModelKindScript {
		if _, err := os.Stat(r.BundlePath(entry)); err != nil {
			return catalog.ModelEntry{}, apperrors.ModelUnavailable(model, fmt.Errorf("bundle file: %w", err))
		}
	}
	return entry, nil
}

// Check implements Generator
func (r *Registry) Check(model string) error {
	_, err := r.Lookup(model)
	return err
}

// Generate implements Generator
func (r *Registry) Generate(
	ctx context.Context,
	seed *models.NoteTimeline,
	durationSeconds, temperature float64,
	model string,
) (*models.NoteTimeline, error) {
	entry, err := r.Lookup(model)
	if err != nil {
		return nil, err
	}
	return r.backends[entry.Kind].Generate(ctx, entry, seed, durationSeconds, temperature)
}

// SeedFragment returns the one-note primer handed to the generator
func SeedFragment(noteName string, tempo int) (*models.NoteTimeline, error) {
	if noteName == "" {
		noteName = DefaultSeedNote
	}
	pitch, err := arranger.NoteNameToMIDI(noteName)
	if err != nil {
		return nil, apperrors.InputError("seed note %q: %v", noteName, err)
	}

	seed := &models.NoteTimeline{}
	seed.AddTempo(float64(tempo), 0)
	seed.Add(models.NoteEvent{
		Pitch:     pitch,
		StartTime: 0,
		EndTime:   seedDurationSeconds,
		Velocity:  seedVelocity,
		Channel:   models.ChannelMelody,
		Program:   models.ProgramPiano,
	})
	return seed, nil
}
