package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestCreateMessage_NoAPIKey(t *testing.T) {
	c := NewClient("")

	_, err := c.CreateMessage(context.Background(), MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 100,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestCreateMessage_RateLimiterCanceledContext(t *testing.T) {
	c := NewClient("test-key", WithRateLimit(0.001))

	// Exhaust the single burst slot so the next call must wait, then cancel.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateMessage(ctx, MessageRequest{
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 100,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	assert.InDelta(t, 18.00, usage.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
	assert.InDelta(t, 4.80, usage.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.Zero(t, usage.EstimateCost("unknown-model"))
}

func TestClassifyError_Transport(t *testing.T) {
	err := classifyError(errors.New("dial tcp: connection refused"))

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Contains(t, transport.Error(), "connection refused")
	assert.NotNil(t, transport.Unwrap())
}

func TestUpstreamError_Message(t *testing.T) {
	err := &UpstreamError{StatusCode: 429, Message: "rate limited"}
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
