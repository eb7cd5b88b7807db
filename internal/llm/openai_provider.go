package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	maxOutputTrunc = 200

	// Reasoning effort levels
	reasoningNone    = "none"
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
	reasoningMin     = "min"
	reasoningMed     = "med"

	// Provider name
	providerNameOpenAI = "openai"
)

// Only these models accept a reasoning parameter; they reject temperature.
var modelsWithReasoning = map[string]bool{
	"gpt-5":        true,
	"gpt-5-mini":   true,
	"gpt-5-nano":   true,
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.1-nano": true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	textOutput := cleanJSONOutput(resp.OutputText())
	if textOutput == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	log.Printf("📥 OPENAI RESPONSE: %s", truncate(textOutput, maxOutputTrunc))
	log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		resp.Usage.InputTokens, resp.Usage.OutputTokens,
		resp.Usage.OutputTokensDetails.ReasoningTokens, resp.Usage.TotalTokens)
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v", time.Since(startTime))

	transaction.SetTag("success", "true")
	return &GenerationResponse{
		RawOutput:    textOutput,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// buildRequestParams converts a GenerationRequest into Responses API params
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(request.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Instructions: openai.String(request.SystemPrompt),
	}

	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		}
	} else if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
		log.Printf("📋 JSON SCHEMA CONFIGURED: %s", request.OutputSchema.Name)
	}

	return params
}

func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningMinimal, reasoningMin:
		return shared.ReasoningEffort(reasoningMinimal)
	case reasoningLow:
		return responses.ReasoningEffortLow
	case reasoningMedium, reasoningMed:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	case reasoningNone:
		return shared.ReasoningEffort(reasoningNone)
	default:
		return responses.ReasoningEffortLow
	}
}

// cleanJSONOutput strips markdown code fences some models wrap JSON in
func cleanJSONOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
