package llm

import (
	"testing"

	"github.com/openai/openai-go/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key")

	t.Run("reasoning model ignores temperature", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{
			Model:         "gpt-5-mini",
			ReasoningMode: "medium",
			SystemPrompt:  "test system prompt",
			Input:         "test content",
			Temperature:   1.2,
		})
		assert.Equal(t, "gpt-5-mini", params.Model)
		assert.Equal(t, "test system prompt", params.Instructions.Value)
		assert.Equal(t, responses.ReasoningEffortMedium, params.Reasoning.Effort)
		assert.False(t, params.Temperature.Valid())
		assert.Len(t, params.Input.OfInputItemList, 1)
	})

	t.Run("non-reasoning model carries temperature", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{
			Model:       "gpt-4.1-mini",
			Input:       "test",
			Temperature: 0.7,
		})
		assert.True(t, params.Temperature.Valid())
		assert.InDelta(t, 0.7, params.Temperature.Value, 1e-9)
	})

	t.Run("output schema sets json format", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{
			Model:        "gpt-5-mini",
			Input:        "test",
			OutputSchema: MelodySchema(),
		})
		require.NotNil(t, params.Text.Format.OfJSONSchema)
		assert.Equal(t, "melody", params.Text.Format.OfJSONSchema.Name)
	})
}

func TestReasoningEffort(t *testing.T) {
	tests := []struct {
		mode     string
		expected string
	}{
		{"minimal", "minimal"},
		{"min", "minimal"},
		{"low", "low"},
		{"medium", "medium"},
		{"med", "medium"},
		{"high", "high"},
		{"none", "none"},
		{"", "low"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(reasoningEffort(tt.mode)))
		})
	}
}

func TestCleanJSONOutput(t *testing.T) {
	assert.Equal(t, `{"notes":[]}`, cleanJSONOutput("```json\n{\"notes\":[]}\n```"))
	assert.Equal(t, `{"notes":[]}`, cleanJSONOutput(`  {"notes":[]} `))
	assert.Equal(t, "", cleanJSONOutput("   "))
}
