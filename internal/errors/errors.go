package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of an arrangement run
var (
	ErrInput              = errors.New("invalid input")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrRenderFailure      = errors.New("render failed")
	ErrPersistenceFailure = errors.New("history persistence failed")
	ErrToolNotInstalled   = errors.New("required tool not installed")
	ErrNotFound           = errors.New("not found")
)

// ProcessError represents a failure in an external process
type ProcessError struct {
	Tool     string // "fluidsynth", "python3"
	Stage    string // "render", "melody"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}

// InputError wraps a validation message as ErrInput
func InputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// ModelUnavailable reports that no generator bundle exists for the model name
func ModelUnavailable(model string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: model %q: %v", ErrModelUnavailable, model, cause)
	}
	return fmt.Errorf("%w: model %q not found", ErrModelUnavailable, model)
}

// RenderFailure wraps a renderer error as ErrRenderFailure, keeping the cause reachable
func RenderFailure(cause error) error {
	return fmt.Errorf("%w: %w", ErrRenderFailure, cause)
}

// PersistenceFailure wraps a history store error as ErrPersistenceFailure
func PersistenceFailure(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, cause)
}
