// Service for the session lifecycle state machine: starting chats, gating
// messages, pause/resume of the session timer, finalization and review gating.
package service

import (
	"context"
	"fmt"
	"time"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/pkg/mailer"
	"terapia-chat-be/internal/pkg/timer"
	"terapia-chat-be/internal/repository/specification"
	"terapia-chat-be/internal/repository/unitofwork"
	"terapia-chat-be/pkg/events"
	"terapia-chat-be/pkg/n8n"

	"github.com/google/uuid"
)

const (
	// manual finalize requires an actual conversation
	minMessagesManualFinalize = 4
	// timer expiry finalizes anything with at least one message
	minMessagesAutoFinalize = 1
)

type ILifecycleService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.StartChatRequest) (*dto.SessionResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, chatId string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Finalize(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ReviewResponse, error)
	NextSession(ctx context.Context, userId uuid.UUID, chatId string) (*dto.SessionResponse, error)
	SelectSession(ctx context.Context, chatId string, sessao int) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, chatId, threadId string) (*dto.SessionListResponse, error)
	PauseTimer(ctx context.Context, userId uuid.UUID, chatId string) (*dto.TimerStatus, error)
	ResumeTimer(ctx context.Context, userId uuid.UUID, chatId string) (*dto.TimerStatus, error)

	// CheckExpiry runs the auto-finalization path for one thread. Returns true
	// when the session was finalized by this call.
	CheckExpiry(ctx context.Context, thread *entity.ChatThread) (bool, error)
}

type lifecycleService struct {
	uowFactory       unitofwork.RepositoryFactory
	accessService    IAccessService
	reviewService    IReviewService
	webhookClient    *n8n.Client
	publisherService IPublisherService
	emailService     mailer.IEmailService
	logger           logger.ILogger
	sessionDuration  time.Duration
}

func NewLifecycleService(
	uowFactory unitofwork.RepositoryFactory,
	accessService IAccessService,
	reviewService IReviewService,
	webhookClient *n8n.Client,
	publisherService IPublisherService,
	emailService mailer.IEmailService,
	sysLogger logger.ILogger,
	sessionDuration time.Duration,
) ILifecycleService {
	return &lifecycleService{
		uowFactory:       uowFactory,
		accessService:    accessService,
		reviewService:    reviewService,
		webhookClient:    webhookClient,
		publisherService: publisherService,
		emailService:     emailService,
		logger:           sysLogger,
		sessionDuration:  sessionDuration,
	}
}

// threadState derives the explicit lifecycle state from persisted facts.
func threadState(maxSessao int, hasReviewForMax bool, maxSessoes int) entity.ThreadState {
	switch {
	case maxSessao == 0:
		return entity.ThreadStateNew
	case !hasReviewForMax:
		return entity.ThreadStateActive
	case maxSessao >= maxSessoes:
		return entity.ThreadStateProtocolComplete
	default:
		return entity.ThreadStateFinalized
	}
}

func (s *lifecycleService) Start(ctx context.Context, userId uuid.UUID, req *dto.StartChatRequest) (*dto.SessionResponse, error) {
	decision, err := s.accessService.CanUserAccessDiagnostico(ctx, userId, req.DiagnosticoCodigo)
	if err != nil {
		return nil, err
	}
	if !decision.CanAccess {
		return nil, fmt.Errorf("access denied: %s", decision.Reason)
	}

	protocolo := req.Protocolo
	if protocolo == "" {
		protocolo = "tcc"
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	chatId := uuid.NewString()
	thread := &entity.ChatThread{
		ChatId:           chatId,
		UserId:           userId,
		Diagnostico:      req.DiagnosticoCodigo,
		Protocolo:        protocolo,
		Sessao:           1,
		SessionStartedAt: time.Now(),
	}
	if err := uow.ChatThreadRepository().Create(ctx, thread); err != nil {
		uow.Rollback()
		return nil, err
	}

	binding := &entity.UserChat{
		UserId:      userId,
		ChatId:      chatId,
		Diagnostico: req.DiagnosticoCodigo,
	}
	if err := uow.UserChatRepository().Create(ctx, binding); err != nil {
		uow.Rollback()
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publisherService.Publish(events.NewSessionStarted(userId.String(), chatId, req.DiagnosticoCodigo, 1))
	s.remindAccessExpiry(ctx, userId)

	return s.threadToResponse(ctx, thread, false), nil
}

// remindAccessExpiry sends a best-effort heads-up when the user's access
// window closes within a week.
func (s *lifecycleService) remindAccessExpiry(ctx context.Context, userId uuid.UUID) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	metadata, err := uow.UserMetadataRepository().FindByUserId(ctx, userId)
	if err != nil || metadata == nil || metadata.Email == "" || metadata.DataFinalAcesso == nil {
		return
	}

	left := time.Until(*metadata.DataFinalAcesso)
	if left <= 0 || left > 7*24*time.Hour {
		return
	}
	daysLeft := int(left.Hours()/24) + 1
	if err := s.emailService.SendAccessExpiring(metadata.Email, daysLeft); err != nil {
		s.logger.Warn("LifecycleService", "Access-expiry email failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *lifecycleService) SendMessage(ctx context.Context, userId uuid.UUID, chatId string, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.ownedCurrentThread(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}

	hasReview, err := uow.ChatReviewRepository().Exists(ctx, chatId, thread.Sessao)
	if err != nil {
		return nil, err
	}
	if hasReview {
		return nil, fmt.Errorf("session %d is already finalized", thread.Sessao)
	}
	if thread.TimerPaused {
		return nil, fmt.Errorf("session timer is paused")
	}
	if timer.IsExpired(thread.SessionStartedAt, time.Now(), s.sessionDuration, thread.TimerPaused) {
		// the session is over; the expiry path owns what happens next
		if _, err := s.CheckExpiry(ctx, thread); err != nil {
			s.logger.Error("LifecycleService", "Expiry handling failed", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		}
		return nil, fmt.Errorf("session time expired")
	}

	webhookResp, err := s.webhookClient.SendChat(ctx, &n8n.ChatRequest{
		ChatId:      chatId,
		ThreadId:    thread.ThreadId,
		Sessao:      thread.Sessao,
		Diagnostico: thread.Diagnostico,
		Protocolo:   thread.Protocolo,
		Message:     req.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reach the session assistant: %w", err)
	}

	// Persist both sides only once the assistant answered, so a failed
	// webhook call leaves no half-conversation behind to count toward the
	// finalize thresholds.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	sent := &entity.ChatMessage{
		ChatId:  chatId,
		Sessao:  thread.Sessao,
		Role:    entity.ChatMessageRoleUser,
		Content: req.Content,
	}
	if err := uow.ChatMessageRepository().Create(ctx, sent); err != nil {
		uow.Rollback()
		return nil, err
	}

	reply := &entity.ChatMessage{
		ChatId:  chatId,
		Sessao:  thread.Sessao,
		Role:    entity.ChatMessageRoleAssistant,
		Content: webhookResp.Output,
	}
	if err := uow.ChatMessageRepository().Create(ctx, reply); err != nil {
		uow.Rollback()
		return nil, err
	}

	// first reply may carry the external conversation handle
	if thread.ThreadId == "" && webhookResp.ThreadId != "" {
		thread.ThreadId = webhookResp.ThreadId
		if err := uow.ChatThreadRepository().Update(ctx, thread); err != nil {
			s.logger.Warn("LifecycleService", "Failed to persist thread handle", map[string]interface{}{"chat_id": chatId, "error": err.Error()})
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		Sent:  messageToResponse(sent),
		Reply: messageToResponse(reply),
	}, nil
}

func (s *lifecycleService) Finalize(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.ownedCurrentThread(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}

	hasReview, err := uow.ChatReviewRepository().Exists(ctx, chatId, thread.Sessao)
	if err != nil {
		return nil, err
	}
	if hasReview {
		return nil, fmt.Errorf("session %d is already finalized", thread.Sessao)
	}

	count, err := uow.ChatMessageRepository().CountForSession(ctx, chatId, thread.Sessao)
	if err != nil {
		return nil, err
	}
	if count < minMessagesManualFinalize {
		return nil, fmt.Errorf("at least %d messages are required before finalizing", minMessagesManualFinalize)
	}

	review, _, err := s.reviewService.GenerateAndStore(ctx, chatId, thread.Sessao, thread.Diagnostico)
	if err != nil {
		return nil, err
	}

	s.publisherService.Publish(events.NewSessionFinalized(userId.String(), chatId, thread.Sessao, false))
	s.afterFinalize(ctx, thread)

	return reviewToResponse(review), nil
}

func (s *lifecycleService) NextSession(ctx context.Context, userId uuid.UUID, chatId string) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	current, err := s.ownedCurrentThread(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}

	hasReview, err := uow.ChatReviewRepository().Exists(ctx, chatId, current.Sessao)
	if err != nil {
		return nil, err
	}
	if !hasReview {
		return nil, fmt.Errorf("current session must be finalized before starting a new one")
	}

	reached, err := s.reviewService.HasReachedMaxSessions(ctx, chatId, current.Diagnostico)
	if err != nil {
		return nil, err
	}
	if reached {
		return nil, fmt.Errorf("session limit reached for this protocol")
	}

	next := &entity.ChatThread{
		ChatId:           chatId,
		ThreadId:         current.ThreadId,
		UserId:           current.UserId,
		Diagnostico:      current.Diagnostico,
		Protocolo:        current.Protocolo,
		Sessao:           current.Sessao + 1,
		SessionStartedAt: time.Now(),
	}
	if err := uow.ChatThreadRepository().Create(ctx, next); err != nil {
		return nil, err
	}

	s.publisherService.Publish(events.NewSessionStarted(userId.String(), chatId, next.Diagnostico, next.Sessao))

	return s.threadToResponse(ctx, next, false), nil
}

func (s *lifecycleService) SelectSession(ctx context.Context, chatId string, sessao int) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ChatThreadRepository().FindOne(ctx,
		specification.ByChatId{ChatId: chatId},
		specification.BySessao{Sessao: sessao},
	)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("session %d not found for chat %s", sessao, chatId)
	}

	hasReview, err := uow.ChatReviewRepository().Exists(ctx, chatId, sessao)
	if err != nil {
		return nil, err
	}

	return s.threadToResponse(ctx, thread, hasReview), nil
}

func (s *lifecycleService) ListSessions(ctx context.Context, chatId, threadId string) (*dto.SessionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var key specification.Specification = specification.ByChatId{ChatId: chatId}
	if threadId != "" {
		key = specification.ByThreadId{ThreadId: threadId}
	}

	threads, err := uow.ChatThreadRepository().FindAll(ctx, key, specification.OrderBy{Field: "sessao"})
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return &dto.SessionListResponse{ChatId: chatId, Sessions: []*dto.SessionResponse{}}, nil
	}

	resolvedChatId := threads[0].ChatId
	maxSessoes := s.accessService.ResolveMaxSessions(ctx, threads[0].Diagnostico)

	sessions := make([]*dto.SessionResponse, len(threads))
	allReviewed := true
	maxSessao := 0
	for i, t := range threads {
		hasReview, err := uow.ChatReviewRepository().Exists(ctx, t.ChatId, t.Sessao)
		if err != nil {
			return nil, err
		}
		if !hasReview {
			allReviewed = false
		}
		if t.Sessao > maxSessao {
			maxSessao = t.Sessao
		}
		sessions[i] = s.threadToResponse(ctx, t, hasReview)
	}

	complete := allReviewed && maxSessao >= maxSessoes

	return &dto.SessionListResponse{
		ChatId:             resolvedChatId,
		Sessions:           sessions,
		CanStartNewSession: allReviewed && !complete,
		MaxSessoes:         maxSessoes,
		ProtocolComplete:   complete,
	}, nil
}

func (s *lifecycleService) PauseTimer(ctx context.Context, userId uuid.UUID, chatId string) (*dto.TimerStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.ownedCurrentThread(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}
	if thread.TimerPaused {
		return s.timerStatus(thread), nil
	}

	remaining := timer.Remaining(thread.SessionStartedAt, time.Now(), s.sessionDuration)
	thread.TimerPaused = true
	thread.TimerPausedTime = remaining.Milliseconds()
	if err := uow.ChatThreadRepository().Update(ctx, thread); err != nil {
		return nil, err
	}

	return s.timerStatus(thread), nil
}

func (s *lifecycleService) ResumeTimer(ctx context.Context, userId uuid.UUID, chatId string) (*dto.TimerStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.ownedCurrentThread(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}
	if !thread.TimerPaused {
		return s.timerStatus(thread), nil
	}

	// rewind the anchor so the countdown continues from the snapshot
	thread.SessionStartedAt = timer.ResumeAnchor(time.Now(), s.sessionDuration, thread.TimerPausedTime)
	thread.TimerPaused = false
	thread.TimerPausedTime = 0
	if err := uow.ChatThreadRepository().Update(ctx, thread); err != nil {
		return nil, err
	}

	return s.timerStatus(thread), nil
}

func (s *lifecycleService) CheckExpiry(ctx context.Context, thread *entity.ChatThread) (bool, error) {
	if !timer.IsExpired(thread.SessionStartedAt, time.Now(), s.sessionDuration, thread.TimerPaused) {
		return false, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	hasReview, err := uow.ChatReviewRepository().Exists(ctx, thread.ChatId, thread.Sessao)
	if err != nil {
		return false, err
	}
	if hasReview {
		return false, nil
	}

	count, err := uow.ChatMessageRepository().CountForSession(ctx, thread.ChatId, thread.Sessao)
	if err != nil {
		return false, err
	}
	// sessions that expire with zero messages are left untouched
	if count < minMessagesAutoFinalize {
		return false, nil
	}

	s.publisherService.Publish(events.NewSessionExpired(thread.ChatId, thread.Sessao))

	if _, _, err := s.reviewService.GenerateAndStore(ctx, thread.ChatId, thread.Sessao, thread.Diagnostico); err != nil {
		return false, err
	}

	s.publisherService.Publish(events.NewSessionFinalized(thread.UserId.String(), thread.ChatId, thread.Sessao, true))
	s.afterFinalize(ctx, thread)

	s.logger.Info("LifecycleService", "Session auto-finalized after expiry", map[string]interface{}{
		"chat_id": thread.ChatId,
		"sessao":  thread.Sessao,
	})
	return true, nil
}

// afterFinalize handles protocol completion: event + best-effort email.
func (s *lifecycleService) afterFinalize(ctx context.Context, thread *entity.ChatThread) {
	maxSessoes := s.accessService.ResolveMaxSessions(ctx, thread.Diagnostico)
	if thread.Sessao < maxSessoes {
		return
	}

	s.publisherService.Publish(events.NewProtocolComplete(thread.UserId.String(), thread.ChatId, thread.Diagnostico, maxSessoes))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	metadata, err := uow.UserMetadataRepository().FindByUserId(ctx, thread.UserId)
	if err != nil || metadata == nil || metadata.Email == "" {
		return
	}
	if err := s.emailService.SendProtocolComplete(metadata.Email, thread.Diagnostico, maxSessoes); err != nil {
		s.logger.Warn("LifecycleService", "Protocol-complete email failed", map[string]interface{}{"error": err.Error()})
	}
}

// ownedCurrentThread loads the highest-sessao row of a chat and verifies the
// caller owns it.
func (s *lifecycleService) ownedCurrentThread(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, chatId string) (*entity.ChatThread, error) {
	thread, err := uow.ChatThreadRepository().FindCurrent(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, fmt.Errorf("chat %s not found", chatId)
	}
	if thread.UserId != userId {
		return nil, fmt.Errorf("chat %s does not belong to this user", chatId)
	}
	return thread, nil
}

func (s *lifecycleService) timerStatus(thread *entity.ChatThread) *dto.TimerStatus {
	now := time.Now()
	remaining := timer.RemainingForSnapshot(thread.SessionStartedAt, now, s.sessionDuration, thread.TimerPaused, thread.TimerPausedTime)
	return &dto.TimerStatus{
		RemainingMs: remaining.Milliseconds(),
		Display:     timer.FormatMMSS(remaining),
		Paused:      thread.TimerPaused,
		Expired:     timer.IsExpired(thread.SessionStartedAt, now, s.sessionDuration, thread.TimerPaused),
	}
}

func (s *lifecycleService) threadToResponse(ctx context.Context, thread *entity.ChatThread, hasReview bool) *dto.SessionResponse {
	maxSessoes := s.accessService.ResolveMaxSessions(ctx, thread.Diagnostico)

	state := threadState(thread.Sessao, hasReview, maxSessoes)

	resp := &dto.SessionResponse{
		Id:               thread.Id,
		ChatId:           thread.ChatId,
		ThreadId:         thread.ThreadId,
		Diagnostico:      thread.Diagnostico,
		Protocolo:        thread.Protocolo,
		Sessao:           thread.Sessao,
		State:            string(state),
		HasReview:        hasReview,
		SessionStartedAt: thread.SessionStartedAt,
	}
	if !hasReview {
		resp.Timer = s.timerStatus(thread)
	}
	return resp
}

func messageToResponse(m *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
