package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatReview marks a session as finalized. Existence of a row for
// (ChatId, Sessao) is the sole finalization signal.
type ChatReview struct {
	Id                uuid.UUID
	ChatId            string
	Sessao            int
	ResumoAtendimento string
	FeedbackDireto    string
	SinaisPaciente    []string
	PontosPositivos   []string
	PontosNegativos   []string
	CreatedAt         time.Time
}
