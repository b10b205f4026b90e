package implementation

import (
	"context"
	"errors"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/mapper"
	"terapia-chat-be/internal/model"
	"terapia-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserMetadataRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserMetadataRepository(db *gorm.DB) contract.UserMetadataRepository {
	return &UserMetadataRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserMetadataRepositoryImpl) Upsert(ctx context.Context, metadata *entity.UserMetadata) error {
	m := r.mapper.UserMetadataToModel(metadata)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "role", "data_final_acesso"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*metadata = *r.mapper.UserMetadataToEntity(m)
	return nil
}

func (r *UserMetadataRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserMetadata, error) {
	var m model.UserMetadata
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserMetadataToEntity(&m), nil
}
