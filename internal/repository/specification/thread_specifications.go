package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatId struct {
	ChatId string
}

func (s ByChatId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatId)
}

type ByThreadId struct {
	ThreadId string
}

func (s ByThreadId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadId)
}

type ByUserId struct {
	UserId uuid.UUID
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

type BySessao struct {
	Sessao int
}

func (s BySessao) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sessao = ?", s.Sessao)
}

type ByDiagnostico struct {
	Diagnostico string
}

func (s ByDiagnostico) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("diagnostico = ?", s.Diagnostico)
}

// TimerRunning keeps rows whose countdown is actually ticking.
type TimerRunning struct{}

func (s TimerRunning) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("timer_paused = ?", false)
}

// StartedBefore matches sessions anchored before the cutoff; used by the
// expiry sweeper to find candidates past their time budget.
type StartedBefore struct {
	Cutoff time.Time
}

func (s StartedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_started_at < ?", s.Cutoff)
}

// NotReviewed excludes sessions that already have a review, so already
// finalized historical rows never re-enter the sweep candidate set.
type NotReviewed struct{}

func (s NotReviewed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("NOT EXISTS (SELECT 1 FROM chat_reviews r WHERE r.chat_id = chat_threads.chat_id AND r.sessao = chat_threads.sessao)")
}
