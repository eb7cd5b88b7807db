package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/magda-compose/internal/config"
)

func TestCalculateCost(t *testing.T) {
	cost := CalculateCost("gpt-5-mini", 1000, 1000)
	assert.InDelta(t, gpt5MiniInputPrice+gpt5MiniOutputPrice, cost, 1e-12)

	// unknown models fall back to the default pricing
	assert.InDelta(t, cost, CalculateCost("unknown-model", 1000, 1000), 1e-12)
	assert.Zero(t, CalculateCost("gemini-2.5-flash", 0, 0))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.002250", FormatCost(0.00225))
}

func TestDisabledClient(t *testing.T) {
	client := NewLangfuseClient(context.Background(), &config.Config{LangfuseEnabled: false})
	assert.False(t, client.IsEnabled())

	trace := client.StartTrace(context.Background(), "melody", nil)
	gen := trace.Generation("melody.generate", nil)

	assert.NotPanics(t, func() {
		gen.LogCompletion("gpt-5-mini", "input", "output", 10, 20, map[string]interface{}{"k": "v"})
		gen.SetLevel("ERROR")
		gen.Finish()
		trace.Finish()
	})

	var nilClient *LangfuseClient
	assert.False(t, nilClient.IsEnabled())
}
