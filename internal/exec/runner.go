package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
)

// Result holds command execution output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes external commands with context support
type Runner struct {
	PythonPath string
}

// NewRunner creates a new command runner
func NewRunner(pythonPath string) *Runner {
	if pythonPath == "" {
		pythonPath = "python3"
	}
	return &Runner{PythonPath: pythonPath}
}

// Run executes a tool. A missing binary yields ErrToolNotInstalled and a
// non-zero exit a *ProcessError, both with the captured result.
func (r *Runner) Run(ctx context.Context, stage, name string, args ...string) (*Result, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return &Result{ExitCode: -1}, fmt.Errorf("%w: %s", apperrors.ErrToolNotInstalled, name)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		return result, apperrors.NewProcessError(name, stage, result.ExitCode, result.Stderr, err)
	}

	return result, nil
}

// RunScript executes a Python script with arguments
func (r *Runner) RunScript(ctx context.Context, stage, script string, args ...string) (*Result, error) {
	return r.Run(ctx, stage, r.PythonPath, append([]string{script}, args...)...)
}
