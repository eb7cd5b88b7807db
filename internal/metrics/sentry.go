package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordArrangement records one arrangement run
func (m *SentryMetrics) RecordArrangement(ctx context.Context, model string, duration time.Duration, noteCount int, success bool) {
	if m == nil || !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("arrangement.model", model)
		transaction.SetData("arrangement.note_count", noteCount)
	}

	span := sentry.StartSpan(ctx, "arrangement.request")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("note_count", noteCount)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Arrangement: %s", model)
}

// RecordRender records one audio render
func (m *SentryMetrics) RecordRender(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "render.audio")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("success", success)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Render: %t", success)
}

// RecordTokenUsage records LLM token usage for melody requests
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int) {
	if m == nil || !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}
