package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatThread struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId           string    `gorm:"type:text;not null;uniqueIndex:uniq_chat_sessao,priority:1;index"`
	ThreadId         string    `gorm:"type:text"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	Diagnostico      string    `gorm:"type:text;not null"`
	Protocolo        string    `gorm:"type:text"`
	Sessao           int       `gorm:"not null;uniqueIndex:uniq_chat_sessao,priority:2"`
	SessionStartedAt time.Time `gorm:"not null"`
	TimerPaused      bool      `gorm:"default:false"`
	TimerPausedTime  int64     `gorm:"default:0"` // remaining ms at pause time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (ChatThread) TableName() string {
	return "chat_threads"
}

func (t *ChatThread) BeforeCreate(tx *gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}
