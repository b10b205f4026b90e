package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Session lifecycle event codes published by the lifecycle service and fanned
// out to the websocket hub and the NATS audit stream.
const (
	TypeSessionStarted   = "SESSION_STARTED"
	TypeSessionFinalized = "SESSION_FINALIZED"
	TypeSessionExpired   = "SESSION_EXPIRED"
	TypeReviewCreated    = "REVIEW_CREATED"
	TypeProtocolComplete = "PROTOCOL_COMPLETE"
)

func NewSessionStarted(userId, chatId, diagnostico string, sessao int) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"user_id":     userId,
			"chat_id":     chatId,
			"diagnostico": diagnostico,
			"sessao":      sessao,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionFinalized(userId, chatId string, sessao int, auto bool) Event {
	return BaseEvent{
		Type: TypeSessionFinalized,
		Data: map[string]interface{}{
			"user_id": userId,
			"chat_id": chatId,
			"sessao":  sessao,
			"auto":    auto,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionExpired(chatId string, sessao int) Event {
	return BaseEvent{
		Type: TypeSessionExpired,
		Data: map[string]interface{}{
			"chat_id": chatId,
			"sessao":  sessao,
		},
		OccurredAt: time.Now(),
	}
}

func NewReviewCreated(chatId string, sessao int, fallback bool) Event {
	return BaseEvent{
		Type: TypeReviewCreated,
		Data: map[string]interface{}{
			"chat_id":  chatId,
			"sessao":   sessao,
			"fallback": fallback,
		},
		OccurredAt: time.Now(),
	}
}

func NewProtocolComplete(userId, chatId, diagnostico string, sessoes int) Event {
	return BaseEvent{
		Type: TypeProtocolComplete,
		Data: map[string]interface{}{
			"user_id":     userId,
			"chat_id":     chatId,
			"diagnostico": diagnostico,
			"sessoes":     sessoes,
		},
		OccurredAt: time.Now(),
	}
}
