package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := ports.BatchEvent{
		Type:           ports.BatchFinalized,
		BatchID:        "7b0c0a3e-9f5e-4c1e-8a57-5d0f3f1b2c11",
		Owner:          "0f9d4f6e-1111-4c1e-8a57-5d0f3f1b2c11",
		Status:         "PARTIAL",
		RequestedCount: 3,
		SuccessCount:   2,
		RefundCents:    150,
		At:             at,
	}

	msg, err := encode(event)
	require.NoError(t, err)

	assert.Equal(t, []byte(event.BatchID), msg.Key)
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "BatchFinalized", string(msg.Headers[0].Value))

	var decoded ports.BatchEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher("", "batch-events")
	assert.Error(t, err)

	_, err = NewPublisher("localhost:9092", "")
	assert.Error(t, err)

	p, err := NewPublisher("localhost:9092", "batch-events")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(t.Context(), ports.BatchEvent{}))
}
