package mapper

import (
	"encoding/json"
	"time"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Thread Mappers

func (m *ChatMapper) ChatThreadToEntity(t *model.ChatThread) *entity.ChatThread {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.ChatThread{
		Id:               t.Id,
		ChatId:           t.ChatId,
		ThreadId:         t.ThreadId,
		UserId:           t.UserId,
		Diagnostico:      t.Diagnostico,
		Protocolo:        t.Protocolo,
		Sessao:           t.Sessao,
		SessionStartedAt: t.SessionStartedAt,
		TimerPaused:      t.TimerPaused,
		TimerPausedTime:  t.TimerPausedTime,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ChatMapper) ChatThreadToModel(t *entity.ChatThread) *model.ChatThread {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.ChatThread{
		Id:               t.Id,
		ChatId:           t.ChatId,
		ThreadId:         t.ThreadId,
		UserId:           t.UserId,
		Diagnostico:      t.Diagnostico,
		Protocolo:        t.Protocolo,
		Sessao:           t.Sessao,
		SessionStartedAt: t.SessionStartedAt,
		TimerPaused:      t.TimerPaused,
		TimerPausedTime:  t.TimerPausedTime,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

// Review Mappers
// List fields are JSON-encoded into text columns.

func (m *ChatMapper) ChatReviewToEntity(r *model.ChatReview) *entity.ChatReview {
	if r == nil {
		return nil
	}

	return &entity.ChatReview{
		Id:                r.Id,
		ChatId:            r.ChatId,
		Sessao:            r.Sessao,
		ResumoAtendimento: r.ResumoAtendimento,
		FeedbackDireto:    r.FeedbackDireto,
		SinaisPaciente:    decodeStringList(r.SinaisPaciente),
		PontosPositivos:   decodeStringList(r.PontosPositivos),
		PontosNegativos:   decodeStringList(r.PontosNegativos),
		CreatedAt:         r.CreatedAt,
	}
}

func (m *ChatMapper) ChatReviewToModel(r *entity.ChatReview) *model.ChatReview {
	if r == nil {
		return nil
	}

	return &model.ChatReview{
		Id:                r.Id,
		ChatId:            r.ChatId,
		Sessao:            r.Sessao,
		ResumoAtendimento: r.ResumoAtendimento,
		FeedbackDireto:    r.FeedbackDireto,
		SinaisPaciente:    encodeStringList(r.SinaisPaciente),
		PontosPositivos:   encodeStringList(r.PontosPositivos),
		PontosNegativos:   encodeStringList(r.PontosNegativos),
		CreatedAt:         r.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		Sessao:    msg.Sessao,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		Sessao:    msg.Sessao,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func encodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
