package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartChatRequest struct {
	DiagnosticoCodigo string `json:"diagnostico_codigo" validate:"required"`
	Protocolo         string `json:"protocolo"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type SendMessageResponse struct {
	Sent  *MessageResponse `json:"sent"`
	Reply *MessageResponse `json:"reply"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TimerStatus mirrors the countdown state the UI renders.
type TimerStatus struct {
	RemainingMs int64  `json:"remaining_ms"`
	Display     string `json:"display"` // MM:SS
	Paused      bool   `json:"paused"`
	Expired     bool   `json:"expired"`
}

type SessionResponse struct {
	Id               uuid.UUID    `json:"id"`
	ChatId           string       `json:"chat_id"`
	ThreadId         string       `json:"thread_id,omitempty"`
	Diagnostico      string       `json:"diagnostico"`
	Protocolo        string       `json:"protocolo,omitempty"`
	Sessao           int          `json:"sessao"`
	State            string       `json:"state"`
	HasReview        bool         `json:"has_review"`
	SessionStartedAt time.Time    `json:"session_started_at"`
	Timer            *TimerStatus `json:"timer,omitempty"`
}

// SessionListResponse enumerates every session of a chat for the tab strip.
type SessionListResponse struct {
	ChatId             string             `json:"chat_id"`
	Sessions           []*SessionResponse `json:"sessions"`
	CanStartNewSession bool               `json:"can_start_new_session"`
	MaxSessoes         int                `json:"max_sessoes"`
	ProtocolComplete   bool               `json:"protocol_complete"`
}

type ChatViewStateRequest struct {
	SelectedSessionId string `json:"selectedSessionId"`
	SelectedSessaoNum int    `json:"selectedSessaoNumber"`
	ThreadId          string `json:"threadId"`
}
