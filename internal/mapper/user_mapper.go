package mapper

import (
	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) UserMetadataToEntity(u *model.UserMetadata) *entity.UserMetadata {
	if u == nil {
		return nil
	}

	return &entity.UserMetadata{
		UserId:          u.UserId,
		Email:           u.Email,
		Role:            entity.UserRole(u.Role),
		DataFinalAcesso: u.DataFinalAcesso,
		CreatedAt:       u.CreatedAt,
	}
}

func (m *UserMapper) UserMetadataToModel(u *entity.UserMetadata) *model.UserMetadata {
	if u == nil {
		return nil
	}

	return &model.UserMetadata{
		UserId:          u.UserId,
		Email:           u.Email,
		Role:            string(u.Role),
		DataFinalAcesso: u.DataFinalAcesso,
		CreatedAt:       u.CreatedAt,
	}
}

func (m *UserMapper) UserChatToEntity(u *model.UserChat) *entity.UserChat {
	if u == nil {
		return nil
	}

	return &entity.UserChat{
		Id:          u.Id,
		UserId:      u.UserId,
		ChatId:      u.ChatId,
		Diagnostico: u.Diagnostico,
		CreatedAt:   u.CreatedAt,
	}
}

func (m *UserMapper) UserChatToModel(u *entity.UserChat) *model.UserChat {
	if u == nil {
		return nil
	}

	return &model.UserChat{
		Id:          u.Id,
		UserId:      u.UserId,
		ChatId:      u.ChatId,
		Diagnostico: u.Diagnostico,
		CreatedAt:   u.CreatedAt,
	}
}

func (m *UserMapper) DiagnosticoToEntity(d *model.Diagnostico) *entity.Diagnostico {
	if d == nil {
		return nil
	}

	return &entity.Diagnostico{
		Codigo:     d.Codigo,
		Nome:       d.Nome,
		Ativo:      d.Ativo,
		MaxSessoes: d.MaxSessoes,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *UserMapper) DiagnosticoToModel(d *entity.Diagnostico) *model.Diagnostico {
	if d == nil {
		return nil
	}

	return &model.Diagnostico{
		Codigo:     d.Codigo,
		Nome:       d.Nome,
		Ativo:      d.Ativo,
		MaxSessoes: d.MaxSessoes,
		CreatedAt:  d.CreatedAt,
	}
}
