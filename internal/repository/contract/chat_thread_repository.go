package contract

import (
	"context"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"
)

type ChatThreadRepository interface {
	Create(ctx context.Context, thread *entity.ChatThread) error
	Update(ctx context.Context, thread *entity.ChatThread) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatThread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatThread, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindCurrent returns the row with the highest sessao for a chatId, or nil.
	FindCurrent(ctx context.Context, chatId string) (*entity.ChatThread, error)

	// MaxSessao returns the highest persisted sessao for a chatId (0 when none).
	MaxSessao(ctx context.Context, chatId string) (int, error)
}
