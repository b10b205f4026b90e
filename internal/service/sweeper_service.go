package service

import (
	"context"
	"time"

	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/repository/specification"
	"terapia-chat-be/internal/repository/unitofwork"
)

// ISweeperService finalizes expired sessions server-side so the outcome does
// not depend on the client tab staying open.
type ISweeperService interface {
	Run(ctx context.Context)
	SweepOnce(ctx context.Context) (int, error)
}

type sweeperService struct {
	uowFactory       unitofwork.RepositoryFactory
	lifecycleService ILifecycleService
	logger           logger.ILogger
	sessionDuration  time.Duration
	interval         time.Duration
}

func NewSweeperService(
	uowFactory unitofwork.RepositoryFactory,
	lifecycleService ILifecycleService,
	sysLogger logger.ILogger,
	sessionDuration time.Duration,
	interval time.Duration,
) ISweeperService {
	return &sweeperService{
		uowFactory:       uowFactory,
		lifecycleService: lifecycleService,
		logger:           sysLogger,
		sessionDuration:  sessionDuration,
		interval:         interval,
	}
}

// Run loops until the context is cancelled. Intended to be spawned as a
// goroutine from main.
func (s *sweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("SweeperService", "Expiry sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SweeperService", "Expiry sweeper stopped", nil)
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("SweeperService", "Sweep failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// SweepOnce finds every running session past its time budget and feeds it
// through the auto-finalization path. Returns how many were finalized.
func (s *sweeperService) SweepOnce(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cutoff := time.Now().Add(-s.sessionDuration)
	candidates, err := uow.ChatThreadRepository().FindAll(ctx,
		specification.TimerRunning{},
		specification.StartedBefore{Cutoff: cutoff},
		specification.NotReviewed{},
	)
	if err != nil {
		return 0, err
	}

	finalized := 0
	for _, thread := range candidates {
		done, err := s.lifecycleService.CheckExpiry(ctx, thread)
		if err != nil {
			s.logger.Error("SweeperService", "Auto-finalize failed", map[string]interface{}{
				"chat_id": thread.ChatId,
				"sessao":  thread.Sessao,
				"error":   err.Error(),
			})
			continue
		}
		if done {
			finalized++
		}
	}
	return finalized, nil
}
