package contract

import (
	"context"

	"terapia-chat-be/internal/entity"
	"terapia-chat-be/internal/repository/specification"
)

type DiagnosticoRepository interface {
	Create(ctx context.Context, diagnostico *entity.Diagnostico) error
	Update(ctx context.Context, diagnostico *entity.Diagnostico) error
	FindByCodigo(ctx context.Context, codigo string) (*entity.Diagnostico, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Diagnostico, error)
}
