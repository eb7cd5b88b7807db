package observability

import (
	"strconv"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// GPT-5 mini pricing
	gpt5MiniInputPrice  = 0.00025
	gpt5MiniOutputPrice = 0.002

	// GPT-5.1 pricing
	gpt51InputPrice  = 0.00125
	gpt51OutputPrice = 0.01

	// GPT-4.1 mini pricing
	gpt41MiniInputPrice  = 0.0004
	gpt41MiniOutputPrice = 0.0016

	// Gemini 2.5 Flash pricing
	gemini25FlashInputPrice  = 0.0003
	gemini25FlashOutputPrice = 0.0025

	defaultPricingModel = "gpt-5-mini"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the melody models
var PricingTable = map[string]ModelPricing{
	"gpt-5-mini": {
		InputPricePer1K:  gpt5MiniInputPrice,
		OutputPricePer1K: gpt5MiniOutputPrice,
	},
	"gpt-5.1": {
		InputPricePer1K:  gpt51InputPrice,
		OutputPricePer1K: gpt51OutputPrice,
	},
	"gpt-4.1-mini": {
		InputPricePer1K:  gpt41MiniInputPrice,
		OutputPricePer1K: gpt41MiniOutputPrice,
	},
	"gemini-2.5-flash": {
		InputPricePer1K:  gemini25FlashInputPrice,
		OutputPricePer1K: gemini25FlashOutputPrice,
	},
}

// CalculateCost calculates the cost in USD for one LLM call
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(inputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(outputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
