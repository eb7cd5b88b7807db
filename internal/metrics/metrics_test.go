package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	client, err := NewClient(context.Background(), "development", true)
	require.NoError(t, err)
	assert.False(t, client.enabled)

	// disabled clients are no-ops
	client.RecordAPIRequest("/generate_music", 200, time.Second)
	client.RecordArrangement("basic_rnn", time.Second, true)
	client.RecordRender(time.Second, false)
}

func TestNilRecorders(t *testing.T) {
	var client *Client
	var sentryMetrics *SentryMetrics

	assert.NotPanics(t, func() {
		client.RecordArrangement("basic_rnn", time.Second, true)
		sentryMetrics.RecordArrangement(context.Background(), "basic_rnn", time.Second, 10, true)
		sentryMetrics.RecordRender(context.Background(), time.Second, true)
	})
}

func TestSentryMetrics_WithoutClient(t *testing.T) {
	m := NewSentryMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordAPIRequest(ctx, "/health", 200, time.Millisecond)
		m.RecordArrangement(ctx, "attention_rnn", time.Second, 120, true)
		m.RecordRender(ctx, time.Second, false)
		m.RecordTokenUsage(ctx, "gpt-5-mini", 100, 200)
	})
}
