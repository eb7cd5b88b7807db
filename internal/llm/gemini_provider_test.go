package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiProvider_Name(t *testing.T) {
	provider := &GeminiProvider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_BuildContents(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	contents := provider.buildGeminiContents("write a melody")
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "write a melody", contents[0].Parts[0].Text)

	assert.Empty(t, provider.buildGeminiContents(""))
}

func TestGeminiProvider_BuildConfig(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	config := provider.buildConfig(&GenerationRequest{
		SystemPrompt: "instructions",
		Temperature:  0.9,
		OutputSchema: MelodySchema(),
	})

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.9, *config.Temperature, 1e-6)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
}

func TestConvertSchemaToGemini(t *testing.T) {
	schema := convertSchemaToGemini(GetMelodyOutputSchema())
	require.NotNil(t, schema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"description", "notes"}, schema.Required)

	notes := schema.Properties["notes"]
	require.NotNil(t, notes)
	assert.Equal(t, genai.TypeArray, notes.Type)
	require.NotNil(t, notes.Items)

	pitch := notes.Items.Properties["midiNoteNumber"]
	require.NotNil(t, pitch)
	assert.Equal(t, genai.TypeInteger, pitch.Type)
	require.NotNil(t, pitch.Maximum)
	assert.InDelta(t, 127.0, *pitch.Maximum, 1e-9)

	assert.Equal(t, genai.TypeNumber, notes.Items.Properties["startBeats"].Type)
}

func TestProcessGeminiResponse(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	_, err := provider.processGeminiResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	resp, err := provider.processGeminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"description":"x","notes":[]}`}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 34,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"description":"x","notes":[]}`, resp.RawOutput)
	assert.Equal(t, 12, resp.InputTokens)
	assert.Equal(t, 34, resp.OutputTokens)
}
