package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents := p.buildGeminiContents(request.Input)
	config := p.buildConfig(request)

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	response, err := p.processGeminiResponse(result)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	log.Printf("✅ GEMINI GENERATION COMPLETED in %v", time.Since(startTime))
	transaction.SetTag("success", "true")
	return response, nil
}

// buildGeminiContents wraps the user input as Gemini content
func (p *GeminiProvider) buildGeminiContents(input string) []*genai.Content {
	if input == "" {
		return nil
	}
	return []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: input}},
		},
	}
}

// buildConfig sets instructions, temperature and the structured output schema
func (p *GeminiProvider) buildConfig(request *GenerationRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}
	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(request.Temperature))
	}
	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = convertSchemaToGemini(request.OutputSchema.Schema)
	}
	return config
}

// convertSchemaToGemini maps a JSON schema object onto genai.Schema.
// Only the keywords the melody schema uses are carried over.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	switch schema["type"] {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				out.Properties[name] = convertSchemaToGemini(propMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = convertSchemaToGemini(items)
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}
	if minimum, ok := numberValue(schema["minimum"]); ok {
		out.Minimum = genai.Ptr(minimum)
	}
	if maximum, ok := numberValue(schema["maximum"]); ok {
		out.Maximum = genai.Ptr(maximum)
	}

	return out
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// processGeminiResponse extracts the JSON text and usage from a Gemini response
func (p *GeminiProvider) processGeminiResponse(result *genai.GenerateContentResponse) (*GenerationResponse, error) {
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no parts in Gemini response")
	}

	textOutput := cleanJSONOutput(candidate.Content.Parts[0].Text)
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	response := &GenerationResponse{RawOutput: textOutput}
	if result.UsageMetadata != nil {
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.UsageMetadata.PromptTokenCount,
			result.UsageMetadata.CandidatesTokenCount,
			result.UsageMetadata.TotalTokenCount)
		response.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		response.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	return response, nil
}
