package service

import (
	"encoding/json"
	"log"
	"time"

	"terapia-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService puts lifecycle events on the in-process bus. Subscribers
// (websocket fan-out, audit trail) are decoupled from the lifecycle itself.
type IPublisherService interface {
	Publish(event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

type eventEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt int64                  `json:"occurred_at"`
}

// event rebuilds the typed event on the consuming side. OccurredAt travels as
// unix milliseconds on the wire.
func (e eventEnvelope) event() events.BaseEvent {
	return events.BaseEvent{
		Type:       e.Type,
		Data:       e.Data,
		OccurredAt: time.UnixMilli(e.OccurredAt),
	}
}

func (s *publisherService) Publish(event events.Event) error {
	payload, err := json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp().UnixMilli(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", event.EventType(), err)
		return err
	}
	return nil
}
