package contract

import (
	"context"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"
)

type ChatReviewRepository interface {
	Create(ctx context.Context, review *entity.ChatReview) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatReview, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatReview, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Exists is the finalization signal: one row per (chatId, sessao).
	Exists(ctx context.Context, chatId string, sessao int) (bool, error)
}
