package service

import (
	"context"
	"encoding/json"

	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/websocket"
	"terapia-chat-be/pkg/events"
	appnats "terapia-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// INotifierService consumes lifecycle events and fans them out: websocket
// refresh pushes to the owning user, a best-effort copy to the NATS audit
// stream, and a line in the audit log.
type INotifierService interface {
	Run(ctx context.Context) error
}

type notifierService struct {
	topicName     string
	subscriber    message.Subscriber
	hub           *websocket.Hub
	natsPublisher *appnats.Publisher
	auditLogger   logger.ILogger
	sysLogger     logger.ILogger
}

func NewNotifierService(
	topicName string,
	subscriber message.Subscriber,
	hub *websocket.Hub,
	natsPublisher *appnats.Publisher,
	auditLogger logger.ILogger,
	sysLogger logger.ILogger,
) INotifierService {
	return &notifierService{
		topicName:     topicName,
		subscriber:    subscriber,
		hub:           hub,
		natsPublisher: natsPublisher,
		auditLogger:   auditLogger,
		sysLogger:     sysLogger,
	}
}

func (s *notifierService) Run(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.handle(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

func (s *notifierService) handle(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.sysLogger.Warn("NotifierService", "Bad event payload", map[string]interface{}{"error": err.Error()})
		return
	}

	s.auditLogger.Info("Audit", envelope.Type, envelope.Data)

	s.pushRefresh(envelope.Type, envelope.Data)

	if s.natsPublisher != nil {
		if err := s.natsPublisher.Publish(ctx, envelope.event()); err != nil {
			s.sysLogger.Warn("NotifierService", "NATS publish failed", map[string]interface{}{
				"event": envelope.Type,
				"error": err.Error(),
			})
		}
	}
}

// pushRefresh tells the owning user's open tabs to re-fetch the session list.
// Events without a user_id have no addressable recipient and are skipped.
func (s *notifierService) pushRefresh(eventType string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}

	switch eventType {
	case events.TypeSessionStarted, events.TypeSessionFinalized, events.TypeProtocolComplete:
	default:
		return
	}

	rawUserId, _ := data["user_id"].(string)
	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		return
	}

	chatId, _ := data["chat_id"].(string)
	sessao := 0
	if f, ok := data["sessao"].(float64); ok {
		sessao = int(f)
	}

	s.hub.SendRefresh(userId, websocket.RefreshMessage{
		Kind:   eventType,
		ChatId: chatId,
		Sessao: sessao,
	})
}
