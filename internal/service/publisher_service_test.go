package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"terapia-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelopeRoundTrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := NewPublisherService("TEST_EVENTS", pubSub)

	messages, err := pubSub.Subscribe(context.Background(), "TEST_EVENTS")
	require.NoError(t, err)

	original := events.NewSessionStarted("user-1", "chat-1", "ansiedade", 1)
	require.NoError(t, publisher.Publish(original))

	select {
	case msg := <-messages:
		var envelope eventEnvelope
		require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
		msg.Ack()

		restored := envelope.event()
		assert.Equal(t, original.EventType(), restored.EventType())
		assert.Equal(t, "chat-1", restored.Payload()["chat_id"])

		// the timestamp travels as unix milliseconds and must survive the trip
		assert.Equal(t, original.Timestamp().UnixMilli(), restored.Timestamp().UnixMilli())
	case <-time.After(2 * time.Second):
		t.Fatal("no event received on the topic")
	}
}
