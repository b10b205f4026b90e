// Service implementing the access rules that gate new chat creation.
package service

import (
	"context"
	"strings"
	"time"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/pkg/serverutils"
	"terapia-chat-be/internal/repository/memory"
	"terapia-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultMaxSessions    = 10
	depressaoMaxSessions  = 14
	transientRetrySeconds = 5
)

type IAccessService interface {
	// CanUserAccessDiagnostico decides whether a user may start a new chat for
	// a diagnosis. Read-only; every denial carries a reason.
	CanUserAccessDiagnostico(ctx context.Context, userId uuid.UUID, codigo string) (*dto.AccessDecision, error)

	// ResolveMaxSessions resolves the session limit for a diagnosis from its
	// row, falling back to the static rule on missing data or query failure.
	ResolveMaxSessions(ctx context.Context, codigo string) int
}

type accessService struct {
	uowFactory unitofwork.RepositoryFactory
	limitCache *memory.LimitCache
	logger     logger.ILogger
}

func NewAccessService(uowFactory unitofwork.RepositoryFactory, limitCache *memory.LimitCache, sysLogger logger.ILogger) IAccessService {
	return &accessService{
		uowFactory: uowFactory,
		limitCache: limitCache,
		logger:     sysLogger,
	}
}

// FallbackMaxSessions is the static limit rule used when the diagnosis row
// carries no explicit max_sessoes: 14 for any spelling of "depressão", 10
// otherwise.
func FallbackMaxSessions(codigo string) int {
	normalized := strings.ToLower(strings.TrimSpace(codigo))
	normalized = strings.ReplaceAll(normalized, "ã", "a")
	if normalized == "depressao" {
		return depressaoMaxSessions
	}
	return defaultMaxSessions
}

func (s *accessService) ResolveMaxSessions(ctx context.Context, codigo string) int {
	if limit, found := s.limitCache.Get(codigo); found {
		return limit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	diagnostico, err := uow.DiagnosticoRepository().FindByCodigo(ctx, codigo)
	if err != nil || diagnostico == nil || diagnostico.MaxSessoes == nil {
		return FallbackMaxSessions(codigo)
	}

	s.limitCache.Set(codigo, *diagnostico.MaxSessoes)
	return *diagnostico.MaxSessoes
}

func (s *accessService) CanUserAccessDiagnostico(ctx context.Context, userId uuid.UUID, codigo string) (*dto.AccessDecision, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Diagnosis must exist and be active
	diagnostico, err := uow.DiagnosticoRepository().FindByCodigo(ctx, codigo)
	if err != nil {
		return s.classifyError(err)
	}
	if diagnostico == nil {
		return &dto.AccessDecision{CanAccess: false, Reason: "diagnosis not found"}, nil
	}
	if !diagnostico.Ativo {
		return &dto.AccessDecision{CanAccess: false, Reason: "diagnosis not active"}, nil
	}

	// 2. Access window; missing metadata or date means unlimited access
	metadata, err := uow.UserMetadataRepository().FindByUserId(ctx, userId)
	if err != nil {
		return s.classifyError(err)
	}
	if metadata != nil && metadata.DataFinalAcesso != nil && metadata.DataFinalAcesso.Before(time.Now()) {
		return &dto.AccessDecision{CanAccess: false, Reason: "access expired"}, nil
	}

	// 3. One chat per user per diagnosis
	existing, err := uow.UserChatRepository().FindByUserAndDiagnostico(ctx, userId, codigo)
	if err != nil {
		return s.classifyError(err)
	}
	if existing != nil {
		maxSessoes := s.ResolveMaxSessions(ctx, codigo)
		maxSessao, err := uow.ChatThreadRepository().MaxSessao(ctx, existing.ChatId)
		if err != nil {
			return s.classifyError(err)
		}
		if maxSessao >= maxSessoes {
			return &dto.AccessDecision{CanAccess: false, Reason: "session limit reached"}, nil
		}
		return &dto.AccessDecision{CanAccess: false, Reason: "already has a chat for this diagnosis"}, nil
	}

	return &dto.AccessDecision{CanAccess: true}, nil
}

// classifyError maps infrastructure trouble to a retryable decision; anything
// else becomes a generic denial carrying the error text.
func (s *accessService) classifyError(err error) (*dto.AccessDecision, error) {
	if serverutils.IsTransient(err) {
		s.logger.Warn("AccessService", "Transient error during validation", map[string]interface{}{"error": err.Error()})
		return &dto.AccessDecision{
			CanAccess:  false,
			Reason:     "temporary error, please retry",
			Temporary:  true,
			RetryAfter: transientRetrySeconds,
		}, nil
	}
	s.logger.Error("AccessService", "Validation failed", map[string]interface{}{"error": err.Error()})
	return &dto.AccessDecision{CanAccess: false, Reason: err.Error()}, nil
}
