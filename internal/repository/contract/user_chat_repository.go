package contract

import (
	"context"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserChatRepository interface {
	Create(ctx context.Context, userChat *entity.UserChat) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserChat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserChat, error)

	// FindByUserAndDiagnostico resolves the one binding a user may hold per
	// diagnosis code, or nil.
	FindByUserAndDiagnostico(ctx context.Context, userId uuid.UUID, codigo string) (*entity.UserChat, error)
}
