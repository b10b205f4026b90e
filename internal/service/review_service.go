package service

import (
	"context"
	"fmt"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/repository/specification"
	"terapia-chat-be/internal/repository/unitofwork"
	"terapia-chat-be/pkg/events"
	"terapia-chat-be/pkg/n8n"
)

type IReviewService interface {
	// HasReview is the finalization signal for a (chatId, sessao) pair.
	HasReview(ctx context.Context, chatId string, sessao int) (bool, error)

	GetReview(ctx context.Context, chatId string, sessao int) (*dto.ReviewResponse, error)
	GetLatestReview(ctx context.Context, chatId string) (*dto.ReviewResponse, error)
	ListReviews(ctx context.Context, chatId string) ([]*dto.ReviewResponse, error)
	CreateReview(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)

	// HasReachedMaxSessions reports whether the chat's highest persisted sessao
	// has hit the diagnosis's resolved limit.
	HasReachedMaxSessions(ctx context.Context, chatId string, codigo string) (bool, error)

	// GenerateAndStore asks the external workflow for a structured summary and
	// persists it, substituting a minimal review on any failure. Returns the
	// stored review and whether the fallback was used.
	GenerateAndStore(ctx context.Context, chatId string, sessao int, diagnostico string) (*entity.ChatReview, bool, error)
}

type reviewService struct {
	uowFactory       unitofwork.RepositoryFactory
	accessService    IAccessService
	webhookClient    *n8n.Client
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewReviewService(
	uowFactory unitofwork.RepositoryFactory,
	accessService IAccessService,
	webhookClient *n8n.Client,
	publisherService IPublisherService,
	sysLogger logger.ILogger,
) IReviewService {
	return &reviewService{
		uowFactory:       uowFactory,
		accessService:    accessService,
		webhookClient:    webhookClient,
		publisherService: publisherService,
		logger:           sysLogger,
	}
}

func (s *reviewService) HasReview(ctx context.Context, chatId string, sessao int) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatReviewRepository().Exists(ctx, chatId, sessao)
}

func (s *reviewService) GetReview(ctx context.Context, chatId string, sessao int) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	review, err := uow.ChatReviewRepository().FindOne(ctx,
		specification.ByChatId{ChatId: chatId},
		specification.BySessao{Sessao: sessao},
	)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, nil
	}
	return reviewToResponse(review), nil
}

func (s *reviewService) GetLatestReview(ctx context.Context, chatId string) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	review, err := uow.ChatReviewRepository().FindOne(ctx,
		specification.ByChatId{ChatId: chatId},
		specification.OrderBy{Field: "sessao", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, nil
	}
	return reviewToResponse(review), nil
}

func (s *reviewService) ListReviews(ctx context.Context, chatId string) ([]*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	reviews, err := uow.ChatReviewRepository().FindAll(ctx,
		specification.ByChatId{ChatId: chatId},
		specification.OrderBy{Field: "sessao"},
	)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		result[i] = reviewToResponse(r)
	}
	return result, nil
}

func (s *reviewService) HasReachedMaxSessions(ctx context.Context, chatId string, codigo string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	maxSessao, err := uow.ChatThreadRepository().MaxSessao(ctx, chatId)
	if err != nil {
		return false, err
	}
	return maxSessao >= s.accessService.ResolveMaxSessions(ctx, codigo), nil
}

func (s *reviewService) CreateReview(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The unique (chat_id, sessao) constraint is the backstop; the pre-check
	// keeps the common double-click from ever reaching it.
	exists, err := uow.ChatReviewRepository().Exists(ctx, req.ChatId, req.Sessao)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("review already exists for session %d", req.Sessao)
	}

	review := &entity.ChatReview{
		ChatId:            req.ChatId,
		Sessao:            req.Sessao,
		ResumoAtendimento: req.ResumoAtendimento,
		FeedbackDireto:    req.FeedbackDireto,
		SinaisPaciente:    req.SinaisPaciente,
		PontosPositivos:   req.PontosPositivos,
		PontosNegativos:   req.PontosNegativos,
	}
	if err := uow.ChatReviewRepository().Create(ctx, review); err != nil {
		return nil, err
	}

	s.publisherService.Publish(events.NewReviewCreated(review.ChatId, review.Sessao, false))

	return reviewToResponse(review), nil
}

func (s *reviewService) GenerateAndStore(ctx context.Context, chatId string, sessao int, diagnostico string) (*entity.ChatReview, bool, error) {
	payload, err := s.webhookClient.GenerateReview(ctx, &n8n.ReviewRequest{
		ChatId:      chatId,
		Sessao:      sessao,
		Diagnostico: diagnostico,
	})

	fallback := false
	if err != nil {
		// External failure is absorbed: finalization must always succeed.
		s.logger.Warn("ReviewService", "Review webhook failed, using minimal review", map[string]interface{}{
			"chat_id": chatId,
			"sessao":  sessao,
			"error":   err.Error(),
		})
		payload = minimalReview(sessao)
		fallback = true
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	review := &entity.ChatReview{
		ChatId:            chatId,
		Sessao:            sessao,
		ResumoAtendimento: payload.ResumoAtendimento,
		FeedbackDireto:    payload.FeedbackDireto,
		SinaisPaciente:    payload.SinaisPaciente,
		PontosPositivos:   payload.PontosPositivos,
		PontosNegativos:   payload.PontosNegativos,
	}
	if err := uow.ChatReviewRepository().Create(ctx, review); err != nil {
		return nil, fallback, err
	}

	s.publisherService.Publish(events.NewReviewCreated(chatId, sessao, fallback))

	return review, fallback, nil
}

func minimalReview(sessao int) *n8n.ReviewPayload {
	return &n8n.ReviewPayload{
		ResumoAtendimento: fmt.Sprintf("Sessão %d encerrada. Revisão detalhada indisponível no momento.", sessao),
		FeedbackDireto:    "A revisão automática não pôde ser gerada para esta sessão.",
		SinaisPaciente:    []string{},
		PontosPositivos:   []string{},
		PontosNegativos:   []string{},
	}
}

func reviewToResponse(r *entity.ChatReview) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		Id:                r.Id,
		ChatId:            r.ChatId,
		Sessao:            r.Sessao,
		ResumoAtendimento: r.ResumoAtendimento,
		FeedbackDireto:    r.FeedbackDireto,
		SinaisPaciente:    r.SinaisPaciente,
		PontosPositivos:   r.PontosPositivos,
		PontosNegativos:   r.PontosNegativos,
		CreatedAt:         r.CreatedAt,
	}
}
