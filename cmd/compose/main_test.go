package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Conceptual-Machines/magda-compose/internal/errors"
	"github.com/Conceptual-Machines/magda-compose/internal/models"
	"github.com/Conceptual-Machines/magda-compose/internal/services"
)

func TestRequestFlags_OnlySetFlagsOverride(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := newRequestFlags(fs)
	require.NoError(t, fs.Parse([]string{"--tempo", "90", "--drums=false", "--preset", "lofi", "slow", "jazz"}))

	req := f.request(fs.Args())
	assert.Equal(t, "slow jazz", req.Prompt)
	require.NotNil(t, req.Tempo)
	assert.Equal(t, 90, *req.Tempo)
	require.NotNil(t, req.AddDrums)
	assert.False(t, *req.AddDrums)
	assert.Equal(t, "lofi", req.Preset)

	assert.Nil(t, req.Length)
	assert.Nil(t, req.Temperature)
	assert.Nil(t, req.PadInstrument)
	assert.Nil(t, req.AddArpeggio)
}

func TestRequestFlags_Empty(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := newRequestFlags(fs)
	_ = newServiceFlags(fs)
	require.NoError(t, fs.Parse([]string{"--output-dir", "out", " "}))
	assert.True(t, f.empty(fs.Args()))

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	f = newRequestFlags(fs)
	require.NoError(t, fs.Parse([]string{"--length", "10"}))
	assert.False(t, f.empty(fs.Args()))
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("BUNDLE_DIR", filepath.Join(dir, "bundles"))
	t.Setenv("PRESETS_FILE", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ENVIRONMENT", "test")
	return dir
}

func TestResolveCommand(t *testing.T) {
	isolateEnv(t)
	var out bytes.Buffer

	err := newCommand(&out).ParseAndRun(context.Background(),
		[]string{"resolve", "--tempo", "150", "fast", "rock", "song", "20", "seconds"})
	require.NoError(t, err)

	var preview models.Arrangement
	require.NoError(t, json.Unmarshal(out.Bytes(), &preview))
	assert.Equal(t, 150, preview.Request.Tempo)
	assert.Equal(t, 20, preview.Request.Length)
	assert.Equal(t, models.ProgressionRock, preview.Request.ChordProgressionType)
	assert.Len(t, preview.Sections, 4)
}

func TestResolveCommand_FlagsWithoutPrompt(t *testing.T) {
	isolateEnv(t)
	var out bytes.Buffer

	err := newCommand(&out).ParseAndRun(context.Background(), []string{"resolve", "--length", "10"})
	require.NoError(t, err)

	var preview models.Arrangement
	require.NoError(t, json.Unmarshal(out.Bytes(), &preview))
	assert.Equal(t, 10, preview.Request.Length)
	assert.Equal(t, models.DefaultDefaults().Tempo, preview.Request.Tempo)
}

func TestResolveCommand_NoRequest(t *testing.T) {
	isolateEnv(t)

	err := newCommand(&bytes.Buffer{}).ParseAndRun(context.Background(), []string{"resolve"})
	assert.ErrorIs(t, err, apperrors.ErrInput)
}

func TestHistoryCommands(t *testing.T) {
	dir := isolateEnv(t)
	historyFile := filepath.Join(dir, "history.json")

	store := services.NewFileHistoryStore(historyFile, services.DefaultHistoryLimit)
	require.NoError(t, store.Append(context.Background(), models.HistoryRecord{
		Timestamp: "20250101_120000",
		Model:     models.ModelBasicRNN,
		Length:    30,
		Tempo:     120,
		Genre:     "pop",
		Prompt:    "happy pop",
	}))

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		base := []string{"history", "--history-backend", "file", "--history-file", historyFile}
		require.NoError(t, newCommand(&out).ParseAndRun(context.Background(), append(base, args...)))
		return out.String()
	}

	listing := run("list")
	assert.Contains(t, listing, "20250101_120000")
	assert.Contains(t, listing, "happy pop")
	assert.Contains(t, listing, "None")

	csvPath := filepath.Join(dir, "history.csv")
	run("export", csvPath)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "20250101_120000")

	run("clear")
	assert.NotContains(t, run("list"), "20250101_120000")

	assert.Contains(t, run("import", csvPath), "imported 1 records")
	assert.Contains(t, run("list"), "20250101_120000")

	run("delete", "20250101_120000")
	assert.NotContains(t, run("list"), "20250101_120000")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newCommand(&out).ParseAndRun(context.Background(), []string{"version"}))
	assert.NotEmpty(t, out.String())
}
