package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "HISTORY_BACKEND", "HISTORY_LIMIT", "SAMPLE_RATE", "AUTH_MODE", "MAX_LENGTH_SECONDS", "MAX_TEMPO"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, HistorySQLite, cfg.HistoryBackend)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, "C4", cfg.MelodySeedNote)
	assert.Equal(t, 600, cfg.MaxLengthSeconds)
	assert.Equal(t, 300, cfg.MaxTempo)
	assert.False(t, cfg.IsGatewayMode())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HISTORY_BACKEND", HistoryFile)
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("SAMPLE_RATE", "not-a-number")
	t.Setenv("AUTH_MODE", "gateway")
	t.Setenv("CLOUDWATCH_ENABLED", "true")
	t.Setenv("MAX_LENGTH_SECONDS", "120")

	cfg := Load()

	assert.Equal(t, HistoryFile, cfg.HistoryBackend)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.True(t, cfg.IsGatewayMode())
	assert.True(t, cfg.CloudWatchEnabled)
	assert.Equal(t, 120, cfg.MaxLengthSeconds)
}
