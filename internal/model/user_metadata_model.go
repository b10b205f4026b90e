package model

import (
	"time"

	"github.com/google/uuid"
)

type UserMetadata struct {
	UserId          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email           string     `gorm:"type:text"`
	Role            string     `gorm:"type:text;default:user"`
	DataFinalAcesso *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
}

func (UserMetadata) TableName() string {
	return "user_metadata"
}
