package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

// ChatMessage is one exchanged message inside a session window.
type ChatMessage struct {
	Id        uuid.UUID
	ChatId    string
	Sessao    int
	Role      string
	Content   string
	CreatedAt time.Time
}
