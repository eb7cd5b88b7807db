package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewProcessError("fluidsynth", "render", 2, "no soundfont", cause)

	assert.Equal(t, "fluidsynth failed at render (exit 2): no soundfont", err.Error())
	assert.ErrorIs(t, err, cause)

	var pe *ProcessError
	wrapped := RenderFailure(err)
	assert.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, 2, pe.ExitCode)
	assert.ErrorIs(t, wrapped, ErrRenderFailure)

	quiet := NewProcessError("python3", "melody", 1, "", nil)
	assert.Equal(t, "python3 failed at melody (exit 1)", quiet.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"input", InputError("length %d out of range", -1), ErrInput, "invalid input: length -1 out of range"},
		{"model missing", ModelUnavailable("basic_rnn", nil), ErrModelUnavailable, `model unavailable: model "basic_rnn" not found`},
		{"model cause", ModelUnavailable("x", fs.ErrNotExist), ErrModelUnavailable, `model unavailable: model "x": file does not exist`},
		{"persistence", PersistenceFailure("append", fs.ErrPermission), ErrPersistenceFailure, "history persistence failed: append: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}

	assert.ErrorIs(t, PersistenceFailure("append", fs.ErrPermission), fs.ErrPermission)
	assert.NotErrorIs(t, ModelUnavailable("x", fs.ErrNotExist), fs.ErrNotExist)
}
