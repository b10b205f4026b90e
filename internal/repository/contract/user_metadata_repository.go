package contract

import (
	"context"

	"terapia-chat-be/internal/entity"

	"github.com/google/uuid"
)

type UserMetadataRepository interface {
	Upsert(ctx context.Context, metadata *entity.UserMetadata) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserMetadata, error)
}
