package implementation

import (
	"context"
	"errors"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/mapper"
	"terapia-chat-be/internal/model"
	"terapia-chat-be/internal/repository/contract"
	"terapia-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserChatRepository(db *gorm.DB) contract.UserChatRepository {
	return &UserChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserChatRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserChatRepositoryImpl) Create(ctx context.Context, userChat *entity.UserChat) error {
	m := r.mapper.UserChatToModel(userChat)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*userChat = *r.mapper.UserChatToEntity(m)
	return nil
}

func (r *UserChatRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserChat, error) {
	var m model.UserChat
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserChatToEntity(&m), nil
}

func (r *UserChatRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserChat, error) {
	var models []*model.UserChat
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UserChat, len(models))
	for i, m := range models {
		entities[i] = r.mapper.UserChatToEntity(m)
	}
	return entities, nil
}

func (r *UserChatRepositoryImpl) FindByUserAndDiagnostico(ctx context.Context, userId uuid.UUID, codigo string) (*entity.UserChat, error) {
	var m model.UserChat
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND diagnostico = ?", userId, codigo).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserChatToEntity(&m), nil
}
