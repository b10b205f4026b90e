package model

import "time"

type Diagnostico struct {
	Codigo     string    `gorm:"type:text;primaryKey"`
	Nome       string    `gorm:"type:text;not null"`
	Ativo      bool      `gorm:"default:true"`
	MaxSessoes *int      `gorm:""`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Diagnostico) TableName() string {
	return "diagnosticos"
}
