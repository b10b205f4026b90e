package unitofwork

import (
	"context"

	"terapia-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatThreadRepository() contract.ChatThreadRepository
	ChatReviewRepository() contract.ChatReviewRepository
	ChatMessageRepository() contract.ChatMessageRepository
	DiagnosticoRepository() contract.DiagnosticoRepository
	UserMetadataRepository() contract.UserMetadataRepository
	UserChatRepository() contract.UserChatRepository
}
