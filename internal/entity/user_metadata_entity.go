package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserMetadata holds the per-user access window. A nil DataFinalAcesso means
// unlimited access.
type UserMetadata struct {
	UserId          uuid.UUID
	Email           string
	Role            UserRole
	DataFinalAcesso *time.Time
	CreatedAt       time.Time
}

// UserChat binds a user to a chatId. A chat's sessions are owned collectively
// through this binding.
type UserChat struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	ChatId      string
	Diagnostico string
	CreatedAt   time.Time
}
