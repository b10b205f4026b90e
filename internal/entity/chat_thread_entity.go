package entity

import (
	"time"

	"github.com/google/uuid"
)

// ThreadState is the explicit lifecycle state of a chat thread, derived from
// the persisted rows (max sessao + review existence) rather than stored.
type ThreadState string

const (
	ThreadStateNew              ThreadState = "NEW"
	ThreadStateActive           ThreadState = "ACTIVE"
	ThreadStateFinalized        ThreadState = "FINALIZED"
	ThreadStateProtocolComplete ThreadState = "PROTOCOL_COMPLETE"
)

// ChatThread is one session row: a (chat_id, sessao) pair.
// ChatId groups every session of one user+diagnosis treatment; Sessao is
// 1-based and unique within a ChatId.
type ChatThread struct {
	Id               uuid.UUID
	ChatId           string
	ThreadId         string
	UserId           uuid.UUID
	Diagnostico      string
	Protocolo        string
	Sessao           int
	SessionStartedAt time.Time
	TimerPaused      bool
	TimerPausedTime  int64 // remaining milliseconds snapshot at pause time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
