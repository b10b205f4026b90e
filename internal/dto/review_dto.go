package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReviewRequest struct {
	ChatId            string   `json:"chatId" validate:"required"`
	Sessao            int      `json:"sessao" validate:"required,min=1"`
	ResumoAtendimento string   `json:"resumoAtendimento" validate:"required"`
	FeedbackDireto    string   `json:"feedbackDireto"`
	SinaisPaciente    []string `json:"sinaisPaciente"`
	PontosPositivos   []string `json:"pontosPositivos"`
	PontosNegativos   []string `json:"pontosNegativos"`
}

type ReviewResponse struct {
	Id                uuid.UUID `json:"id"`
	ChatId            string    `json:"chatId"`
	Sessao            int       `json:"sessao"`
	ResumoAtendimento string    `json:"resumoAtendimento"`
	FeedbackDireto    string    `json:"feedbackDireto"`
	SinaisPaciente    []string  `json:"sinaisPaciente"`
	PontosPositivos   []string  `json:"pontosPositivos"`
	PontosNegativos   []string  `json:"pontosNegativos"`
	CreatedAt         time.Time `json:"created_at"`
}
