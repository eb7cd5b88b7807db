package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
)

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner("")
	assert.Equal(t, "python3", r.PythonPath)

	_, err := r.Run(context.Background(), "render", "definitely-not-a-real-tool-binary")
	assert.ErrorIs(t, err, apperrors.ErrToolNotInstalled)
}

func TestRunner_CapturesOutput(t *testing.T) {
	r := NewRunner("")

	result, err := r.Run(context.Background(), "test", "sh", "-c", "echo hello; echo oops >&2")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
}

func TestRunner_NonZeroExit(t *testing.T) {
	r := NewRunner("")

	result, err := r.Run(context.Background(), "melody", "sh", "-c", "echo failed >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)

	var procErr *apperrors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "sh", procErr.Tool)
	assert.Equal(t, "melody", procErr.Stage)
	assert.Equal(t, 3, procErr.ExitCode)
	assert.Equal(t, "failed\n", procErr.Stderr)
}
