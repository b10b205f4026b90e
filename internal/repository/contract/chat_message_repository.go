package contract

import (
	"context"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// CountForSession counts all messages exchanged within (chatId, sessao).
	CountForSession(ctx context.Context, chatId string, sessao int) (int64, error)
}
