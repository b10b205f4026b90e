package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserChat struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`
	ChatId      string    `gorm:"type:text;not null;index"`
	Diagnostico string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (UserChat) TableName() string {
	return "user_chats"
}

func (u *UserChat) BeforeCreate(tx *gorm.DB) error {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	return nil
}
