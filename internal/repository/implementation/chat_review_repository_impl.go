package implementation

import (
	"context"
	"errors"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/mapper"
	"terapia-chat-be/internal/model"
	"terapia-chat-be/internal/repository/contract"
	"terapia-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatReviewRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatReviewRepository(db *gorm.DB) contract.ChatReviewRepository {
	return &ChatReviewRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatReviewRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatReviewRepositoryImpl) Create(ctx context.Context, review *entity.ChatReview) error {
	m := r.mapper.ChatReviewToModel(review)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*review = *r.mapper.ChatReviewToEntity(m)
	return nil
}

func (r *ChatReviewRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatReview, error) {
	var m model.ChatReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatReviewToEntity(&m), nil
}

func (r *ChatReviewRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatReview, error) {
	var models []*model.ChatReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatReview, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatReviewToEntity(m)
	}
	return entities, nil
}

func (r *ChatReviewRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatReview{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChatReviewRepositoryImpl) Exists(ctx context.Context, chatId string, sessao int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatReview{}).
		Where("chat_id = ? AND sessao = ?", chatId, sessao).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
