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

type DiagnosticoRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewDiagnosticoRepository(db *gorm.DB) contract.DiagnosticoRepository {
	return &DiagnosticoRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *DiagnosticoRepositoryImpl) Create(ctx context.Context, diagnostico *entity.Diagnostico) error {
	m := r.mapper.DiagnosticoToModel(diagnostico)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*diagnostico = *r.mapper.DiagnosticoToEntity(m)
	return nil
}

func (r *DiagnosticoRepositoryImpl) Update(ctx context.Context, diagnostico *entity.Diagnostico) error {
	m := r.mapper.DiagnosticoToModel(diagnostico)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*diagnostico = *r.mapper.DiagnosticoToEntity(m)
	return nil
}

func (r *DiagnosticoRepositoryImpl) FindByCodigo(ctx context.Context, codigo string) (*entity.Diagnostico, error) {
	var m model.Diagnostico
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DiagnosticoToEntity(&m), nil
}

func (r *DiagnosticoRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Diagnostico, error) {
	var models []*model.Diagnostico
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Diagnostico, len(models))
	for i, m := range models {
		entities[i] = r.mapper.DiagnosticoToEntity(m)
	}
	return entities, nil
}
