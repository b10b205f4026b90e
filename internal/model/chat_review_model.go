package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List columns (sinais/pontos) hold JSON-encoded string arrays; the mapper
// owns the encoding so the model stays portable across postgres and the
// sqlite test driver.
type ChatReview struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId            string    `gorm:"type:text;not null;uniqueIndex:uniq_review_chat_sessao,priority:1;index"`
	Sessao            int       `gorm:"not null;uniqueIndex:uniq_review_chat_sessao,priority:2"`
	ResumoAtendimento string    `gorm:"type:text"`
	FeedbackDireto    string    `gorm:"type:text"`
	SinaisPaciente    string    `gorm:"type:text"`
	PontosPositivos   string    `gorm:"type:text"`
	PontosNegativos   string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (ChatReview) TableName() string {
	return "chat_reviews"
}

func (r *ChatReview) BeforeCreate(tx *gorm.DB) error {
	if r.Id == uuid.Nil {
		r.Id = uuid.New()
	}
	return nil
}
